package server

import (
	"net"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	context "golang.org/x/net/context"

	"github.com/andaru/filexfer/filestore"
	"github.com/andaru/filexfer/transport"
)

// Run executes the session s until the client closes it. It returns nil
// after a CLOSE command, or the fatal error which ended the session.
// In either case the session's transport has been closed.
func Run(s *Started) error {
	for {
		res, err := s.HasCommand()
		if err != nil {
			return err
		}
		switch next := res.(type) {
		case *Started:
			s = next
		case *Closing:
			return next.Close()
		case *WaitingFilename:
			searching, err := waitForFilename(next)
			if err != nil {
				return err
			}
			zero, err := sendFile(searching)
			if err != nil {
				return err
			}
			if s, err = zero.SendZeroByte(); err != nil {
				return err
			}
		}
	}
}

func waitForFilename(s *WaitingFilename) (*SearchingFilename, error) {
	for {
		res, err := s.HasFilename()
		if err != nil {
			return nil, err
		}
		switch next := res.(type) {
		case *WaitingFilename:
			s = next
		case *SearchingFilename:
			return next, nil
		}
	}
}

func sendFile(s *SearchingFilename) (*SendZeroByte, error) {
	res, err := s.FilenameExists()
	if err != nil {
		return nil, err
	}
	switch next := res.(type) {
	case *SendZeroByte:
		return next, nil
	case *SendingFile:
		return sendAllBytes(next)
	}
	panic("unreachable")
}

func sendAllBytes(s *SendingFile) (*SendZeroByte, error) {
	for {
		res, err := s.EOF()
		if err != nil {
			return nil, err
		}
		switch next := res.(type) {
		case *SendZeroByte:
			return next, nil
		case *SendByte:
			if s, err = next.SendByte(); err != nil {
				return nil, err
			}
		}
	}
}

// Server accepts connections and serves files from Store. Connections
// are served one at a time: the next connection is accepted only once
// the current session has ended.
type Server struct {
	// Store resolves requested filenames.
	Store filestore.Store
	// Network and Address are used by ListenAndServe.
	Network string
	Address string
	// Options are passed to transport.Listen by ListenAndServe.
	Options []transport.Option
}

// ListenAndServe listens on the server's network address and calls
// Serve.
func (srv *Server) ListenAndServe(ctx context.Context) error {
	l, err := transport.Listen(srv.Network, srv.Address, srv.Options...)
	if err != nil {
		return err
	}
	defer l.Close()
	glog.Infof("file server listening on %s %s", srv.Network, l.Addr())
	return srv.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done or l fails,
// running one session per connection. l is closed when ctx is done, and
// Serve then returns ctx.Err().
func (srv *Server) Serve(ctx context.Context, l net.Listener) error {
	if srv.Store == nil {
		return errors.New("server has no Store")
	}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-stop:
		}
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "accept")
		}
		srv.serveConn(conn)
	}
}

func (srv *Server) serveConn(conn net.Conn) {
	t := transport.New(conn)
	addr := t.RemoteAddr()
	glog.Infof("file server started for %s", addr)
	if err := Run(Start(t, srv.Store)); err != nil {
		glog.Errorf("file server session %s failed: %v", addr, err)
		return
	}
	glog.Infof("file server closed for %s", addr)
}
