package server

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/andaru/filexfer/filestore"
	"github.com/andaru/filexfer/framing"
	"github.com/andaru/filexfer/transport"
	"github.com/andaru/filexfer/xfererr"
)

// Start returns a new session on t, serving files from store.
func Start(t *transport.Transport, store filestore.Store) *Started {
	if t == nil || store == nil {
		panic("Start: both t and store must be non-nil")
	}
	return &Started{c: &conn{t: t, store: store}}
}

// HasCommand blocks until a command line is read. REQUEST leads to
// WaitingFilename and CLOSE to Closing; any other line, including one
// too long to read, is ignored and the session remains Started.
func (s *Started) HasCommand() (CommandResult, error) {
	c, err := take(&s.c, StateStarted)
	if err != nil {
		return nil, err
	}
	line, err := c.t.ReadLine()
	if err != nil && !xfererr.IsFatal(err) {
		glog.V(1).Infof("%s: ignored: %v", c, err)
		return &Started{c: c}, nil
	}
	if err != nil {
		return nil, c.abort(nil, errors.Wrap(err, "has command"))
	}
	switch framing.ParseCommand(line) {
	case framing.CommandRequest:
		glog.V(1).Infof("%s: has request", c)
		return &WaitingFilename{c: c}, nil
	case framing.CommandClose:
		glog.V(1).Infof("%s: has close", c)
		return &Closing{c: c}, nil
	}
	glog.V(1).Infof("%s: ignored: %v", c, xfererr.UnknownCommand(string(line)))
	return &Started{c: c}, nil
}

// HasFilename blocks until a line is read. A line holding only
// whitespace, or too long to read, leaves the session WaitingFilename;
// otherwise the trimmed line is the requested filename.
func (s *WaitingFilename) HasFilename() (FilenameResult, error) {
	c, err := take(&s.c, StateWaitingFilename)
	if err != nil {
		return nil, err
	}
	line, err := c.t.ReadLine()
	if err != nil && !xfererr.IsFatal(err) {
		glog.V(1).Infof("%s: ignored filename: %v", c, err)
		return &WaitingFilename{c: c}, nil
	}
	if err != nil {
		return nil, c.abort(nil, errors.Wrap(err, "has filename"))
	}
	filename := framing.Filename(line)
	if filename == "" {
		return &WaitingFilename{c: c}, nil
	}
	glog.V(1).Infof("%s: has filename %q", c, filename)
	return &SearchingFilename{c: c, filename: filename}, nil
}

// Filename returns the requested filename.
func (s *SearchingFilename) Filename() string { return s.filename }

// FilenameExists opens the requested file. Any failure to open it
// leads to SendZeroByte, so the client receives an empty response.
func (s *SearchingFilename) FilenameExists() (SearchResult, error) {
	c, err := take(&s.c, StateSearchingFilename)
	if err != nil {
		return nil, err
	}
	rc, err := c.store.Open(s.filename)
	if err != nil {
		glog.V(1).Infof("%s: file does not exist: %v", c, xfererr.FileUnavailable(s.filename, err))
		return &SendZeroByte{c: c}, nil
	}
	return &SendingFile{c: c, src: filestore.NewSource(rc), filename: s.filename}, nil
}

// EOF checks whether the file has bytes remaining. An exhausted file is
// closed and the session moves to SendZeroByte. A read error ends the
// file early, as if it were exhausted.
func (s *SendingFile) EOF() (EOFResult, error) {
	c, err := take(&s.c, StateSendingFile)
	if err != nil {
		return nil, err
	}
	src := s.src
	s.src = nil
	done, err := src.Exhausted()
	if err != nil {
		glog.Warningf("%s: %v", c, xfererr.FileUnavailable(s.filename, err, xfererr.WithOp("read")))
	}
	if !done {
		return &SendByte{c: c, src: src, filename: s.filename}, nil
	}
	if err := src.Close(); err != nil {
		glog.V(1).Infof("%s: close file: %v", c, err)
	}
	glog.V(1).Infof("%s: file %q sent (%d bytes)", c, s.filename, src.Offset())
	return &SendZeroByte{c: c}, nil
}

// SendByte consumes one byte of the file and writes it to the client.
func (s *SendByte) SendByte() (*SendingFile, error) {
	c, err := take(&s.c, StateSendByte)
	if err != nil {
		return nil, err
	}
	src := s.src
	s.src = nil
	b, err := src.Next()
	if err != nil {
		// The source stays exhausted; EOF reports it.
		glog.Warningf("%s: %v", c, xfererr.FileUnavailable(s.filename, err, xfererr.WithOp("read")))
		return &SendingFile{c: c, src: src, filename: s.filename}, nil
	}
	if err := c.t.WriteByte(b); err != nil {
		return nil, c.abort(src, errors.Wrap(err, "send byte"))
	}
	if glog.V(2) {
		glog.Infof("%s: sent byte %q", c, b)
	}
	return &SendingFile{c: c, src: src, filename: s.filename}, nil
}

// SendZeroByte writes the end of response sentinel. The session is then
// ready for the next command.
func (s *SendZeroByte) SendZeroByte() (*Started, error) {
	c, err := take(&s.c, StateSendZeroByte)
	if err != nil {
		return nil, err
	}
	if err := c.t.WriteEnd(); err != nil {
		return nil, c.abort(nil, errors.Wrap(err, "send zero byte"))
	}
	return &Started{c: c}, nil
}

// Close shuts down the transport. No further commands are read.
func (s *Closing) Close() error {
	c, err := take(&s.c, StateClosing)
	if err != nil {
		return err
	}
	glog.V(1).Infof("%s: closed", c)
	return errors.Wrap(c.t.Close(), "close")
}
