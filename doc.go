/*
Package filexfer is a set of libraries for a minimal file transfer
protocol over a reliable byte stream.

A client sends newline terminated commands: REQUEST followed by a
filename line, or CLOSE. The server answers each request with the raw
bytes of the named file followed by a single zero byte. A file which
cannot be opened is answered with the zero byte alone.

Both ends are written as typestate sessions: every protocol state is a
distinct type, and only the operations legal in that state are methods
on it. A transition consumes its receiver and returns the next state,
so a protocol step taken out of order does not compile, and a state
value used twice fails with an error.

Packages:

	framing    line and response tokenisation
	transport  buffered byte stream over TCP, KCP or any io.ReadWriteCloser
	filestore  filename resolution and byte-at-a-time file sources
	server     server session states, Run and Server
	client     client session states, Response and Fetch
	xfererr    error types and severities
	config     XML configuration for cmd/xferd and cmd/xfer
*/
package filexfer
