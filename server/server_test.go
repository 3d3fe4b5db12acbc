package server

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	context "golang.org/x/net/context"

	"github.com/andaru/filexfer/filestore"
	"github.com/andaru/filexfer/transport"
	"github.com/andaru/filexfer/xfererr"
)

var testFS = fstest.MapFS{
	"test1.txt": {Data: []byte("ABC")},
	"test2.txt": {Data: []byte("hello\nworld\n")},
	"empty.txt": {Data: []byte{}},
}

type rwc struct {
	io.Reader
	*bytes.Buffer
	closed int
}

func (c *rwc) Read(p []byte) (int, error) { return c.Reader.Read(p) }
func (c *rwc) Close() error {
	c.closed++
	return nil
}

func newConn(input string) *rwc {
	return &rwc{Reader: strings.NewReader(input), Buffer: &bytes.Buffer{}}
}

func TestRun(t *testing.T) {
	for _, tc := range []struct {
		name    string
		input   string
		output  string
		wantErr string
	}{
		{
			name:   "close",
			input:  "CLOSE\n",
			output: "",
		},
		{
			name:   "single request",
			input:  "REQUEST\ntest1.txt\nCLOSE\n",
			output: "ABC\x00",
		},
		{
			name:   "sequential requests",
			input:  "REQUEST\ntest1.txt\nREQUEST\ntest2.txt\nREQUEST\ntest1.txt\nCLOSE\n",
			output: "ABC\x00hello\nworld\n\x00ABC\x00",
		},
		{
			name:   "missing file",
			input:  "REQUEST\nmissing.txt\nCLOSE\n",
			output: "\x00",
		},
		{
			name:   "empty file",
			input:  "REQUEST\nempty.txt\nCLOSE\n",
			output: "\x00",
		},
		{
			name:   "unknown commands ignored",
			input:  "GET\n\nrequest\nREQUEST\ntest1.txt\nBYE\nCLOSE\n",
			output: "ABC\x00",
		},
		{
			name:   "blank filename lines skipped",
			input:  "REQUEST\n\n  \r\n\ttest1.txt \r\nCLOSE\n",
			output: "ABC\x00",
		},
		{
			name:   "over-long command line ignored",
			input:  strings.Repeat("X", 70000) + "\nREQUEST\ntest1.txt\nCLOSE\n",
			output: "ABC\x00",
		},
		{
			name:   "over-long filename line skipped",
			input:  "REQUEST\n" + strings.Repeat("f", 70000) + "\ntest2.txt\nCLOSE\n",
			output: "hello\nworld\n\x00",
		},
		{
			name:   "nothing after close is read",
			input:  "CLOSE\nREQUEST\ntest1.txt\n",
			output: "",
		},
		{
			name:    "end of stream",
			input:   "REQUEST\ntest1.txt\n",
			output:  "ABC\x00",
			wantErr: "has command: transport error tag:end-of-stream op:read line",
		},
		{
			name:    "end of stream waiting for filename",
			input:   "REQUEST\n",
			wantErr: "has filename: transport error tag:end-of-stream op:read line",
		},
		{
			name:    "truncated command",
			input:   "CLO",
			wantErr: "has command: transport error tag:transport-failure op:read line: unexpected EOF",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)
			conn := newConn(tc.input)
			err := Run(Start(transport.New(conn), filestore.New(testFS)))
			if tc.wantErr != "" {
				a.EqualError(err, tc.wantErr)
				a.True(xfererr.IsFatal(err))
			} else {
				a.NoError(err)
			}
			a.Equal(tc.output, conn.String())
			a.Equal(1, conn.closed, "transport must be closed exactly once")
		})
	}
}

func TestTransitions(t *testing.T) {
	a := assert.New(t)
	conn := newConn("BOGUS\nREQUEST\ntest1.txt\nREQUEST\n\nnope\nCLOSE\n")
	s := Start(transport.New(conn), filestore.New(testFS))
	a.Equal(StateStarted, s.State())

	res, err := s.HasCommand()
	require.NoError(t, err)
	started, ok := res.(*Started)
	require.True(t, ok, "unknown command must leave the session Started, got %s", res.State())

	res, err = started.HasCommand()
	require.NoError(t, err)
	waiting, ok := res.(*WaitingFilename)
	require.True(t, ok)

	fres, err := waiting.HasFilename()
	require.NoError(t, err)
	searching, ok := fres.(*SearchingFilename)
	require.True(t, ok)
	a.Equal("test1.txt", searching.Filename())

	sres, err := searching.FilenameExists()
	require.NoError(t, err)
	sending, ok := sres.(*SendingFile)
	require.True(t, ok)

	var sent int
	var zero *SendZeroByte
	for zero == nil {
		eres, err := sending.EOF()
		require.NoError(t, err)
		switch next := eres.(type) {
		case *SendByte:
			sending, err = next.SendByte()
			require.NoError(t, err)
			sent++
		case *SendZeroByte:
			zero = next
		}
	}
	a.Equal(3, sent)
	a.Equal("ABC", conn.String())

	started, err = zero.SendZeroByte()
	require.NoError(t, err)
	a.Equal("ABC\x00", conn.String())

	// missing file: straight to SendZeroByte
	res, err = started.HasCommand()
	require.NoError(t, err)
	waiting = res.(*WaitingFilename)
	fres, err = waiting.HasFilename()
	require.NoError(t, err)
	waiting, ok = fres.(*WaitingFilename)
	require.True(t, ok, "empty line must leave the session WaitingFilename")
	fres, err = waiting.HasFilename()
	require.NoError(t, err)
	searching = fres.(*SearchingFilename)
	a.Equal("nope", searching.Filename())
	sres, err = searching.FilenameExists()
	require.NoError(t, err)
	zero, ok = sres.(*SendZeroByte)
	require.True(t, ok)
	started, err = zero.SendZeroByte()
	require.NoError(t, err)
	a.Equal("ABC\x00\x00", conn.String())

	res, err = started.HasCommand()
	require.NoError(t, err)
	closing, ok := res.(*Closing)
	require.True(t, ok)
	a.Equal(StateClosing, closing.State())
	a.NoError(closing.Close())
	a.Equal(1, conn.closed)
}

func TestConsumedState(t *testing.T) {
	a := assert.New(t)
	conn := newConn("REQUEST\ntest1.txt\nCLOSE\n")
	s := Start(transport.New(conn), filestore.New(testFS))

	res, err := s.HasCommand()
	require.NoError(t, err)
	_, err = s.HasCommand()
	a.True(xfererr.Is(err, xfererr.TypeSession, "state-consumed"), "got %v", err)
	a.True(xfererr.IsFatal(err))
	a.EqualError(err, "session error tag:state-consumed Started")

	waiting := res.(*WaitingFilename)
	fres, err := waiting.HasFilename()
	require.NoError(t, err)
	_, err = waiting.HasFilename()
	a.EqualError(err, "session error tag:state-consumed WaitingFilename")

	searching := fres.(*SearchingFilename)
	sres, err := searching.FilenameExists()
	require.NoError(t, err)
	_, err = searching.FilenameExists()
	a.EqualError(err, "session error tag:state-consumed SearchingFilename")

	sending := sres.(*SendingFile)
	eres, err := sending.EOF()
	require.NoError(t, err)
	_, err = sending.EOF()
	a.EqualError(err, "session error tag:state-consumed SendingFile")

	sendByte := eres.(*SendByte)
	_, err = sendByte.SendByte()
	require.NoError(t, err)
	_, err = sendByte.SendByte()
	a.EqualError(err, "session error tag:state-consumed SendByte")
	a.Equal("A", conn.String(), "a spent state must not write")
}

type failStore struct{ err error }

func (f failStore) Open(string) (io.ReadCloser, error) { return nil, f.err }

func TestOpenFailureIsEmptyResponse(t *testing.T) {
	conn := newConn("REQUEST\ntest1.txt\nCLOSE\n")
	err := Run(Start(transport.New(conn), failStore{err: io.ErrUnexpectedEOF}))
	assert.NoError(t, err)
	assert.Equal(t, "\x00", conn.String())
}

func TestWriteFailureIsFatal(t *testing.T) {
	a := assert.New(t)
	pr, pw := io.Pipe()
	pr.Close()
	conn := &pipeConn{Reader: strings.NewReader("REQUEST\ntest1.txt\nCLOSE\n"), Writer: pw}
	err := Run(Start(transport.New(conn), filestore.New(testFS)))
	a.True(xfererr.Is(err, xfererr.TypeTransport, "transport-failure"), "got %v", err)
	a.ErrorIs(err, io.ErrClosedPipe)
	a.True(conn.closed)
}

type pipeConn struct {
	io.Reader
	io.Writer
	closed bool
}

func (c *pipeConn) Close() error {
	c.closed = true
	return nil
}

func TestStateString(t *testing.T) {
	a := assert.New(t)
	a.Equal("SendZeroByte", StateSendZeroByte.String())
	a.Equal("State(99)", State(99).String())
}

func TestServe(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{Store: filestore.New(testFS)}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, l) }()

	// two clients in turn, each on its own connection
	for _, req := range []struct{ name, want string }{
		{"test1.txt", "ABC\x00"},
		{"missing.txt", "\x00"},
	} {
		conn, err := net.DialTimeout("tcp", l.Addr().String(), 5*time.Second)
		require.NoError(t, err)
		_, err = conn.Write([]byte("REQUEST\n" + req.name + "\n"))
		require.NoError(t, err)
		got := make([]byte, len(req.want))
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, err = io.ReadFull(conn, got)
		require.NoError(t, err)
		assert.Equal(t, req.want, string(got))
		_, err = conn.Write([]byte("CLOSE\n"))
		require.NoError(t, err)
		// the server closes its end after CLOSE
		_, err = conn.Read(make([]byte, 1))
		assert.Equal(t, io.EOF, err)
		conn.Close()
	}

	cancel()
	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeNoStore(t *testing.T) {
	srv := &Server{}
	assert.Error(t, srv.Serve(context.Background(), nil))
}
