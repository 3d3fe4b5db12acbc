/*
Package client implements the client side of a file transfer session.

A client session has two states, each its own Go type:

	Started         Request, Close
	RequestingFile  ReadResponseByte, ReadLine

Request writes a file request and moves the session to RequestingFile.
The response is then read until the server's zero byte sentinel, at
which point the read returns the session to Started, ready for the next
request. A missing file and an empty file give the same empty response.

As in package server, calling an operation consumes its receiver; a
spent state value returns a fatal xfererr.StateConsumed error. Transport
errors are fatal and close the transport.

Response adapts a RequestingFile to io.Reader, and Fetch copies one
whole response to an io.Writer.
*/
package client
