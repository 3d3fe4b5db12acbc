package client

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	context "golang.org/x/net/context"

	"github.com/andaru/filexfer/framing"
	"github.com/andaru/filexfer/transport"
	"github.com/andaru/filexfer/xfererr"
)

// State is the name of a client session state.
type State int

const (
	StateStarted State = iota
	StateRequestingFile
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "Started"
	case StateRequestingFile:
		return "RequestingFile"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Started is a session with no request outstanding.
type Started struct {
	t *transport.Transport
}

// RequestingFile is a session reading the response to a request.
type RequestingFile struct {
	t        *transport.Transport
	filename string
}

func (*Started) State() State        { return StateStarted }
func (*RequestingFile) State() State { return StateRequestingFile }

// ReadResult is returned by RequestingFile reads. It is *RequestingFile
// while the response continues, and *Started once the sentinel has been
// read.
type ReadResult interface {
	State() State
	readResult()
}

func (*Started) readResult()        {}
func (*RequestingFile) readResult() {}

// Start returns a new session on t.
func Start(t *transport.Transport) *Started {
	if t == nil {
		panic("Start: t must be non-nil")
	}
	return &Started{t: t}
}

// Dial connects to a server and starts a session.
func Dial(ctx context.Context, network, address string, opts ...transport.Option) (*Started, error) {
	t, err := transport.Dial(ctx, network, address, opts...)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("file client started for %s", t.RemoteAddr())
	return Start(t), nil
}

// Request writes a request for filename. A filename the server would
// not read back unchanged, such as one spanning lines or with leading
// or trailing space, is rejected with a recoverable error, and the
// receiver remains usable.
func (c *Started) Request(filename string) (*RequestingFile, error) {
	if c.t == nil {
		return nil, xfererr.StateConsumed(StateStarted.String())
	}
	if err := framing.CheckFilename(filename); err != nil {
		return nil, xfererr.BadFilename(filename, err)
	}
	t := c.t
	c.t = nil
	if err := t.WriteLine(framing.TokenRequest, filename); err != nil {
		t.Close()
		return nil, errors.Wrap(err, "request")
	}
	glog.V(1).Infof("requesting file %q", filename)
	return &RequestingFile{t: t, filename: filename}, nil
}

// Close writes the close command and closes the transport.
func (c *Started) Close() error {
	if c.t == nil {
		return xfererr.StateConsumed(StateStarted.String())
	}
	t := c.t
	c.t = nil
	err := t.WriteLine(framing.TokenClose)
	if cerr := t.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "close")
}

func (c *RequestingFile) take() (*transport.Transport, error) {
	if c.t == nil {
		return nil, xfererr.StateConsumed(StateRequestingFile.String())
	}
	t := c.t
	c.t = nil
	return t, nil
}

// Filename returns the requested filename.
func (c *RequestingFile) Filename() string { return c.filename }

// ReadResponseByte blocks until one byte of the response is read. The sentinel
// byte returns the session to Started; any other byte is file data and
// the session remains RequestingFile.
func (c *RequestingFile) ReadResponseByte() (byte, ReadResult, error) {
	t, err := c.take()
	if err != nil {
		return 0, nil, err
	}
	b, err := t.ReadByte()
	if err != nil {
		t.Close()
		return 0, nil, errors.Wrap(err, "read byte")
	}
	if b == framing.Sentinel {
		glog.V(1).Infof("request for %q finished", c.filename)
		return b, &Started{t: t}, nil
	}
	if glog.V(2) {
		glog.Infof("received byte %q", b)
	}
	return b, &RequestingFile{t: t, filename: c.filename}, nil
}

// ReadLine blocks until the next newline or the sentinel, returning the
// response data before it. The session returns to Started if the
// sentinel ended the line. Data filling the transport's read buffer
// without either delimiter is returned as a line of its own.
func (c *RequestingFile) ReadLine() ([]byte, ReadResult, error) {
	t, err := c.take()
	if err != nil {
		return nil, nil, err
	}
	line, end, err := t.ReadResponseLine()
	if err != nil {
		t.Close()
		return nil, nil, errors.Wrap(err, "read line")
	}
	line = append([]byte(nil), line...)
	if end {
		glog.V(1).Infof("request for %q finished", c.filename)
		return line, &Started{t: t}, nil
	}
	return line, &RequestingFile{t: t, filename: c.filename}, nil
}
