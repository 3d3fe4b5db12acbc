package server

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/andaru/filexfer/filestore"
	"github.com/andaru/filexfer/transport"
	"github.com/andaru/filexfer/xfererr"
)

// State is the name of a server session state.
type State int

const (
	StateStarted State = iota
	StateWaitingFilename
	StateSearchingFilename
	StateSendingFile
	StateSendByte
	StateSendZeroByte
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "Started"
	case StateWaitingFilename:
		return "WaitingFilename"
	case StateSearchingFilename:
		return "SearchingFilename"
	case StateSendingFile:
		return "SendingFile"
	case StateSendByte:
		return "SendByte"
	case StateSendZeroByte:
		return "SendZeroByte"
	case StateClosing:
		return "Closing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is implemented by every server state value.
type Session interface {
	State() State
}

// conn holds the resources owned by a session. Exactly one state value
// refers to it at a time.
type conn struct {
	t     *transport.Transport
	store filestore.Store
}

func (c *conn) String() string { return c.t.RemoteAddr() }

// abort releases the session's resources after a fatal error.
func (c *conn) abort(src *filestore.Source, err error) error {
	if src != nil {
		src.Close()
	}
	if cerr := c.t.Close(); cerr != nil {
		glog.V(1).Infof("%s: close after error: %v", c, cerr)
	}
	return err
}

// take moves the conn out of a state value, leaving the value spent.
func take(c **conn, st State) (*conn, error) {
	if *c == nil {
		return nil, xfererr.StateConsumed(st.String())
	}
	cur := *c
	*c = nil
	return cur, nil
}

type (
	// Started waits for a command.
	Started struct{ c *conn }
	// WaitingFilename waits for the filename line of a request.
	WaitingFilename struct{ c *conn }
	// SearchingFilename holds a requested filename not yet opened.
	SearchingFilename struct {
		c        *conn
		filename string
	}
	// SendingFile holds an open file with bytes possibly remaining.
	SendingFile struct {
		c        *conn
		src      *filestore.Source
		filename string
	}
	// SendByte holds an open file with at least one byte remaining.
	SendByte struct {
		c        *conn
		src      *filestore.Source
		filename string
	}
	// SendZeroByte must send the end of response sentinel.
	SendZeroByte struct{ c *conn }
	// Closing has received the close command.
	Closing struct{ c *conn }
)

func (*Started) State() State           { return StateStarted }
func (*WaitingFilename) State() State   { return StateWaitingFilename }
func (*SearchingFilename) State() State { return StateSearchingFilename }
func (*SendingFile) State() State       { return StateSendingFile }
func (*SendByte) State() State          { return StateSendByte }
func (*SendZeroByte) State() State      { return StateSendZeroByte }
func (*Closing) State() State           { return StateClosing }

// CommandResult is returned by Started.HasCommand. It is one of
// *WaitingFilename, *Closing or *Started.
type CommandResult interface {
	Session
	commandResult()
}

func (*WaitingFilename) commandResult() {}
func (*Closing) commandResult()         {}
func (*Started) commandResult()         {}

// FilenameResult is returned by WaitingFilename.HasFilename. It is one
// of *SearchingFilename or *WaitingFilename.
type FilenameResult interface {
	Session
	filenameResult()
}

func (*SearchingFilename) filenameResult() {}
func (*WaitingFilename) filenameResult()   {}

// SearchResult is returned by SearchingFilename.FilenameExists. It is
// one of *SendingFile or *SendZeroByte.
type SearchResult interface {
	Session
	searchResult()
}

func (*SendingFile) searchResult()  {}
func (*SendZeroByte) searchResult() {}

// EOFResult is returned by SendingFile.EOF. It is one of *SendByte or
// *SendZeroByte.
type EOFResult interface {
	Session
	eofResult()
}

func (*SendByte) eofResult()     {}
func (*SendZeroByte) eofResult() {}
