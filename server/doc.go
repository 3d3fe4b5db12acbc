/*
Package server implements the server side of a file transfer session.

A server session is a state machine in which every state is its own Go
type, carrying only the data valid in that state and offering only the
operations legal in it:

	Started           HasCommand
	WaitingFilename   HasFilename
	SearchingFilename Filename, FilenameExists
	SendingFile       EOF
	SendByte          SendByte
	SendZeroByte      SendZeroByte
	Closing           Close

Each operation consumes its receiver and returns the successor state.
Operations with more than one possible successor return a result
interface which the caller resolves with a type switch:

	Started -REQUEST-> WaitingFilename -line-> SearchingFilename
	SearchingFilename -open ok-> SendingFile <-> SendByte
	SearchingFilename -open fails-> SendZeroByte
	SendingFile -exhausted-> SendZeroByte -written-> Started
	Started -CLOSE-> Closing

Once an operation has been called on a state value, that value is
spent: calling any operation on it again returns a fatal
xfererr.StateConsumed error. Transport errors are fatal too; the
transport (and any open file) is closed before the error is returned.
Files which cannot be opened or read produce an empty response, and
unrecognised command lines are ignored.

Run drives one session to completion; Server accepts connections and
runs their sessions one at a time.
*/
package server
