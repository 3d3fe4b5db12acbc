package transport

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/andaru/filexfer/framing"
)

// Mode selects how the next token is split from the input stream.
type Mode int

const (
	// ModeLine reads one newline terminated line.
	ModeLine Mode = iota
	// ModeByte reads one raw byte.
	ModeByte
	// ModeResponseLine reads up to and including the next newline or
	// sentinel byte.
	ModeResponseLine
)

const (
	readerBufsize = 64 * 1024
)

// ErrLineTooLong is returned by ReadLine for a line longer than the
// reader's buffer. The line has been discarded, so the next read starts
// at the following line.
var ErrLineTooLong = errors.New("line too long")

// Reader is a transport decoder offering tokenized reads of the input
// stream according to the Mode requested by each call to Next.
//
// A Reader is not safe for concurrent use. Once Next returns an error
// other than ErrLineTooLong, all further calls return an error.
type Reader struct {
	src     io.Reader
	scanner *bufio.Scanner
	mode    Mode
	bufsize int

	// skipping is set while the rest of an over-long line is discarded;
	// long is set when the token returned ended such a line.
	skipping bool
	long     bool
	// partial is set when a response line token filled the buffer
	// without reaching a delimiter.
	partial bool
}

// NewReader returns a new Reader reading from source.
func NewReader(source io.Reader) *Reader {
	if source == nil {
		panic("NewReader: source must be non-nil")
	}
	return &Reader{src: source, bufsize: readerBufsize}
}

// setup performs one time scanner setup
func (r *Reader) setup() {
	if r.scanner != nil {
		return
	}
	initial := 4096
	if r.bufsize < initial {
		initial = r.bufsize
	}
	r.scanner = bufio.NewScanner(r.src)
	r.scanner.Buffer(make([]byte, 0, initial), r.bufsize)
	r.scanner.Split(r.split)
}

func (r *Reader) split(b []byte, atEOF bool) (int, []byte, error) {
	switch r.mode {
	case ModeByte:
		return bufio.ScanBytes(b, atEOF)
	case ModeResponseLine:
		return r.splitResponseLine(b, atEOF)
	default:
		return r.splitLine(b, atEOF)
	}
}

// splitLine splits lines, discarding any line which does not fit in
// the buffer instead of failing the scanner with bufio.ErrTooLong. The
// scanner hands split a full buffer before giving up on it.
func (r *Reader) splitLine(b []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := framing.SplitLine(b, atEOF)
	switch {
	case r.skipping && token != nil:
		r.skipping, r.long = false, true
		return advance, token[:0], nil
	case r.skipping && atEOF:
		return len(b), nil, io.ErrUnexpectedEOF
	case r.skipping:
		return len(b), nil, nil
	case token == nil && err == nil && len(b) >= r.bufsize:
		r.skipping = true
		return len(b), nil, nil
	}
	return advance, token, err
}

// splitResponseLine returns a full buffer as a token when no delimiter
// has been seen, so response data of any length can be read by line.
func (r *Reader) splitResponseLine(b []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := framing.SplitResponseLine(b, atEOF)
	if token == nil && err == nil && len(b) >= r.bufsize {
		r.partial = true
		return len(b), b, nil
	}
	return advance, token, err
}

// Next blocks until the next token of the given mode is available.
// It returns io.EOF if the stream ended cleanly before any byte of
// the token was seen. The returned slice is only valid until the next
// call to Next.
func (r *Reader) Next(mode Mode) ([]byte, error) {
	r.setup()
	r.mode = mode
	r.partial = false
	if r.scanner.Scan() {
		if r.long {
			r.long = false
			return nil, ErrLineTooLong
		}
		return r.scanner.Bytes(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadLine reads one line, without its terminator. A line longer than
// the buffer is skipped and reported as ErrLineTooLong.
func (r *Reader) ReadLine() ([]byte, error) { return r.Next(ModeLine) }

// ReadByte reads one raw byte, implementing io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.Next(ModeByte)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadResponseLine reads the next response line, returning its data
// (without the delimiter) and whether the sentinel ended it. Data which
// fills the buffer before a delimiter is returned as a line of its own
// with end false.
func (r *Reader) ReadResponseLine() (line []byte, end bool, err error) {
	b, err := r.Next(ModeResponseLine)
	if err != nil {
		return nil, false, err
	}
	if r.partial {
		return b, false, nil
	}
	return b[:len(b)-1], framing.EndsResponse(b), nil
}
