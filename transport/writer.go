package transport

import (
	"bufio"
	"io"

	"github.com/andaru/filexfer/framing"
)

// Writer is a transport encoder. Every write is flushed to the
// destination before returning, so a peer blocked reading always sees
// what has been written.
type Writer struct {
	dst io.WriteCloser
	buf *bufio.Writer
}

// NewWriter returns a new Writer writing to the destination dst.
func NewWriter(dst io.WriteCloser) *Writer {
	return &Writer{dst: dst, buf: bufio.NewWriter(dst)}
}

// Write writes b to the destination and flushes it.
func (w *Writer) Write(b []byte) (n int, err error) {
	if n, err = w.buf.Write(b); err != nil {
		return n, err
	}
	return n, w.buf.Flush()
}

// WriteByte writes the single byte c and flushes it.
func (w *Writer) WriteByte(c byte) error {
	if err := w.buf.WriteByte(c); err != nil {
		return err
	}
	return w.buf.Flush()
}

// WriteLine writes each of lines, newline terminated, flushing once
// all are buffered. Lines are validated with framing.EncodeLine before
// anything is written.
func (w *Writer) WriteLine(lines ...string) error {
	encoded := make([][]byte, 0, len(lines))
	for _, line := range lines {
		b, err := framing.EncodeLine(line)
		if err != nil {
			return err
		}
		encoded = append(encoded, b)
	}
	for _, b := range encoded {
		if _, err := w.buf.Write(b); err != nil {
			return err
		}
	}
	return w.buf.Flush()
}

// WriteEnd writes the end of response sentinel. It must be called at
// the end of each response sent by a server.
func (w *Writer) WriteEnd() error { return w.WriteByte(framing.Sentinel) }

// Close closes the underlying writer
func (w *Writer) Close() error { return w.dst.Close() }
