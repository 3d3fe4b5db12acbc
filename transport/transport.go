package transport

import (
	"io"
	"net"

	"github.com/pkg/errors"

	"github.com/andaru/filexfer/framing"
	"github.com/andaru/filexfer/xfererr"
)

// Transport is one end of a file transfer connection. It owns the
// underlying stream; sessions hand a *Transport from state to state.
//
// Errors returned by Transport methods are *xfererr.Error values of
// type xfererr.TypeTransport, except line validation failures from
// WriteLine, which are returned unchanged, and over-long lines skipped
// by ReadLine, which are recoverable protocol errors.
type Transport struct {
	conn io.ReadWriteCloser
	r    *Reader
	w    *Writer
}

// New returns a Transport using conn for both directions.
func New(conn io.ReadWriteCloser) *Transport {
	return &Transport{conn: conn, r: NewReader(conn), w: NewWriter(conn)}
}

// ReadLine blocks until a complete line is read.
func (t *Transport) ReadLine() ([]byte, error) {
	b, err := t.r.ReadLine()
	return b, readError("read line", err)
}

// ReadByte blocks until a single byte is read.
func (t *Transport) ReadByte() (byte, error) {
	c, err := t.r.ReadByte()
	return c, readError("read byte", err)
}

// ReadResponseLine blocks until a response line is read; end reports
// whether the line was terminated by the sentinel.
func (t *Transport) ReadResponseLine() (line []byte, end bool, err error) {
	line, end, err = t.r.ReadResponseLine()
	return line, end, readError("read response line", err)
}

// Write writes b and flushes it.
func (t *Transport) Write(b []byte) (int, error) {
	n, err := t.w.Write(b)
	return n, writeError("write", err)
}

// WriteByte writes c and flushes it.
func (t *Transport) WriteByte(c byte) error {
	return writeError("write byte", t.w.WriteByte(c))
}

// WriteLine writes and flushes lines, each newline terminated.
func (t *Transport) WriteLine(lines ...string) error {
	err := t.w.WriteLine(lines...)
	var bad framing.ErrBadLine
	if errors.As(err, &bad) {
		return err
	}
	return writeError("write line", err)
}

// WriteEnd writes and flushes the end of response sentinel.
func (t *Transport) WriteEnd() error {
	return writeError("write end", t.w.WriteEnd())
}

// Close closes the underlying stream in both directions.
func (t *Transport) Close() error {
	err := t.conn.Close()
	if err == io.ErrClosedPipe || errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return writeError("close", err)
}

// RemoteAddr returns the peer address when the stream is a net.Conn,
// otherwise "-".
func (t *Transport) RemoteAddr() string {
	if c, ok := t.conn.(net.Conn); ok && c.RemoteAddr() != nil {
		return c.RemoteAddr().String()
	}
	return "-"
}

func readError(op string, err error) error {
	switch err {
	case nil:
		return nil
	case io.EOF:
		return xfererr.EndOfStream(xfererr.WithOp(op))
	case ErrLineTooLong:
		return xfererr.LineTooLong(xfererr.WithOp(op))
	}
	return xfererr.TransportFailure(err, xfererr.WithOp(op))
}

func writeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return xfererr.TransportFailure(err, xfererr.WithOp(op))
}
