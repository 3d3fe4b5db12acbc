/*
Package transport provides the file transfer transport layer.

A Transport wraps a reliable, ordered byte stream (normally a TCP or KCP
connection) and offers the primitives sessions are built from: read a
line, read a single raw byte, read a response line, write bytes and
flush, write the end of response sentinel, and close.

Reads are served from one buffered scanner whose split function is
chosen per call, so switching between line and raw byte reads never
loses data already buffered from the stream.
*/
package transport
