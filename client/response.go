package client

import (
	"io"
)

// Response is the reader for a single response, implementing io.Reader.
//
// Read returns file data until the sentinel is read, then io.EOF. After
// io.EOF, Session returns the Started session for the next request. A
// transport error is returned by Read and then by every later Read.
type Response struct {
	cur  *RequestingFile
	next *Started
	err  error
	n    int64
}

// NewResponse returns a Response reading from c. The Response takes
// over c; it must not be used directly afterwards.
func NewResponse(c *RequestingFile) *Response { return &Response{cur: c} }

// Read reads response data into p. It blocks until p is full or the
// response ends.
func (r *Response) Read(p []byte) (n int, err error) {
	if r.cur == nil {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	for n < len(p) {
		b, res, err := r.cur.ReadResponseByte()
		if err != nil {
			r.cur, r.err = nil, err
			return n, err
		}
		switch res := res.(type) {
		case *Started:
			r.cur, r.next = nil, res
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		case *RequestingFile:
			r.cur = res
			p[n] = b
			n++
			r.n++
		}
	}
	return n, nil
}

// Len returns the number of response bytes read so far.
func (r *Response) Len() int64 { return r.n }

// Session returns the Started session once Read has returned io.EOF,
// and nil before that or after an error.
func (r *Response) Session() *Started { return r.next }

// Fetch requests filename on c and copies the response to w. It returns
// the session for the next request along with the number of bytes
// copied.
//
// If the filename is rejected before anything is sent, c is returned
// unchanged with the error. Any other error is fatal and the returned
// session is nil.
func Fetch(c *Started, filename string, w io.Writer) (*Started, int64, error) {
	req, err := c.Request(filename)
	if err != nil {
		if c.t != nil {
			return c, 0, err
		}
		return nil, 0, err
	}
	resp := NewResponse(req)
	n, err := io.Copy(w, resp)
	if err != nil {
		// w failed; the session is abandoned.
		switch {
		case resp.cur != nil:
			resp.cur.t.Close()
			resp.cur = nil
		case resp.next != nil:
			resp.next.t.Close()
			resp.next = nil
		}
		return nil, n, err
	}
	return resp.Session(), n, nil
}
