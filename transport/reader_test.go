package transport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReader(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		f    func(*assert.Assertions, *Reader)
	}{
		{
			name: "lines",
			in:   "REQUEST\ntest1.txt\r\nCLOSE\n",
			f: func(a *assert.Assertions, r *Reader) {
				for _, want := range []string{"REQUEST", "test1.txt", "CLOSE"} {
					b, err := r.ReadLine()
					a.NoError(err)
					a.Equal(want, string(b))
				}
				_, err := r.ReadLine()
				a.Equal(io.EOF, err)
			},
		},
		{
			name: "raw bytes",
			in:   "AB\x00",
			f: func(a *assert.Assertions, r *Reader) {
				for _, want := range []byte{'A', 'B', 0} {
					c, err := r.ReadByte()
					a.NoError(err)
					a.Equal(want, c)
				}
				_, err := r.ReadByte()
				a.Equal(io.EOF, err)
			},
		},
		{
			name: "mode switch keeps buffered input",
			in:   "REQUEST\nXY\x00line\n",
			f: func(a *assert.Assertions, r *Reader) {
				b, err := r.ReadLine()
				a.NoError(err)
				a.Equal("REQUEST", string(b))
				c, err := r.ReadByte()
				a.NoError(err)
				a.Equal(byte('X'), c)
				line, end, err := r.ReadResponseLine()
				a.NoError(err)
				a.True(end)
				a.Equal("Y", string(line))
				b, err = r.ReadLine()
				a.NoError(err)
				a.Equal("line", string(b))
			},
		},
		{
			name: "response lines",
			in:   "one\ntwo\x00\x00",
			f: func(a *assert.Assertions, r *Reader) {
				line, end, err := r.ReadResponseLine()
				a.NoError(err)
				a.False(end)
				a.Equal("one", string(line))
				line, end, err = r.ReadResponseLine()
				a.NoError(err)
				a.True(end)
				a.Equal("two", string(line))
				line, end, err = r.ReadResponseLine()
				a.NoError(err)
				a.True(end)
				a.Empty(line)
			},
		},
		{
			name: "truncated line",
			in:   "REQ",
			f: func(a *assert.Assertions, r *Reader) {
				_, err := r.ReadLine()
				a.Equal(io.ErrUnexpectedEOF, err)
				_, err = r.ReadByte()
				a.Error(err)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) { tc.f(assert.New(t), NewReader(strings.NewReader(tc.in))) })
	}
}

func TestNewReaderNil(t *testing.T) {
	assert.Panics(t, func() { NewReader(nil) })
}

func TestReaderLongLines(t *testing.T) {
	a := assert.New(t)
	r := NewReader(strings.NewReader("0123456789ABCDEF\nREQUEST\n0123456\nabcdefghij"))
	r.bufsize = 8

	_, err := r.ReadLine()
	a.Equal(ErrLineTooLong, err)
	b, err := r.ReadLine()
	a.NoError(err)
	a.Equal("REQUEST", string(b))
	b, err = r.ReadLine()
	a.NoError(err)
	a.Equal("0123456", string(b), "a line one shorter than the buffer fits")
	_, err = r.ReadLine()
	a.Equal(io.ErrUnexpectedEOF, err, "stream ended inside a skipped line")
}

func TestReaderLongResponseLine(t *testing.T) {
	a := assert.New(t)
	r := NewReader(strings.NewReader(strings.Repeat("A", 12) + "\x00B\n"))
	r.bufsize = 8

	line, end, err := r.ReadResponseLine()
	a.NoError(err)
	a.False(end)
	a.Equal(strings.Repeat("A", 8), string(line))
	line, end, err = r.ReadResponseLine()
	a.NoError(err)
	a.True(end)
	a.Equal("AAAA", string(line))
	line, end, err = r.ReadResponseLine()
	a.NoError(err)
	a.False(end)
	a.Equal("B", string(line))
}
