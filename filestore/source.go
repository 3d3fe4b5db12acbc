package filestore

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// Source is a single pass byte cursor over an open file with one byte
// of lookahead.
//
// A Source is not safe for concurrent use.
type Source struct {
	rc  io.ReadCloser
	r   *bufio.Reader
	n   int64
	err error
}

// NewSource returns a Source reading from rc. The Source owns rc and
// closes it on Close.
func NewSource(rc io.ReadCloser) *Source {
	return &Source{rc: rc, r: bufio.NewReader(rc)}
}

// Exhausted peeks at the next byte, reporting true if there is none.
// A read error other than io.EOF ends the source; it is reported once
// alongside true, and the source stays exhausted afterwards.
func (s *Source) Exhausted() (bool, error) {
	if s.err != nil {
		return true, nil
	}
	if _, err := s.r.Peek(1); err != nil {
		s.err = err
		if err == io.EOF {
			return true, nil
		}
		return true, errors.Wrapf(err, "read at offset %d", s.n)
	}
	return false, nil
}

// Next consumes and returns the next byte.
func (s *Source) Next() (byte, error) {
	if s.err != nil {
		return 0, s.err
	}
	c, err := s.r.ReadByte()
	if err != nil {
		s.err = err
		return 0, err
	}
	s.n++
	return c, nil
}

// Offset returns the number of bytes consumed.
func (s *Source) Offset() int64 { return s.n }

// Close closes the underlying file.
func (s *Source) Close() error { return s.rc.Close() }
