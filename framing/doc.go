/*
Package framing offers the line and response framing used on a file
transfer session.

Client to server traffic is line oriented: a command token (REQUEST or
CLOSE) on its own line, followed for REQUEST by a line holding the
filename. Server to client traffic is raw file content terminated by a
single zero byte, the sentinel. The sentinel is not escaped; a file
containing a zero byte is seen by the client as ending at that byte.

The Split functions in this package are bufio.SplitFunc values for use
with a *bufio.Scanner. They return io.ErrUnexpectedEOF when input
terminates other than at the end of a line (or response line).
*/
package framing
