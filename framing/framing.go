package framing

import (
	"bytes"
	"fmt"
	"io"
	"unicode"
)

// Command tokens and the end of response sentinel.
const (
	TokenRequest = "REQUEST"
	TokenClose   = "CLOSE"

	Sentinel byte = 0
)

// Command is a parsed client command line.
type Command int

const (
	// CommandUnknown is any line other than a known command token.
	CommandUnknown Command = iota
	// CommandRequest begins a file request.
	CommandRequest
	// CommandClose ends the session.
	CommandClose
)

func (c Command) String() string {
	switch c {
	case CommandUnknown:
		return "unknown"
	case CommandRequest:
		return TokenRequest
	case CommandClose:
		return TokenClose
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand returns the command named by line. Only an exact match
// of a command token is recognised; line must not include the line
// terminator.
func ParseCommand(line []byte) Command {
	switch string(line) {
	case TokenRequest:
		return CommandRequest
	case TokenClose:
		return CommandClose
	default:
		return CommandUnknown
	}
}

// ErrBadLine is returned when a value cannot be sent as a single line.
type ErrBadLine struct {
	Message string
	Offset  int
}

func (e ErrBadLine) Error() string {
	msg := "bad line"
	if e.Message != "" {
		msg = msg + ": " + e.Message
	}
	if e.Offset < 0 {
		return msg
	}
	return fmt.Sprintf("%s at offset %d", msg, e.Offset)
}

// EncodeLine returns s terminated by a newline. s must be non-empty
// and must not contain a line terminator or the sentinel byte, as the
// peer could not read it back as the same single line.
func EncodeLine(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrBadLine{Message: "empty line", Offset: -1}
	}
	if idx := bytes.IndexAny([]byte(s), "\r\n\x00"); idx > -1 {
		return nil, ErrBadLine{Message: fmt.Sprintf("invalid character %q", s[idx]), Offset: idx}
	}
	b := make([]byte, 0, len(s)+1)
	b = append(b, s...)
	return append(b, '\n'), nil
}

// Filename returns the filename carried by line, with surrounding
// whitespace and control characters removed.
func Filename(line []byte) string {
	return string(bytes.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}))
}

// CheckFilename returns an error unless name can be sent as a filename
// line and read back unchanged by Filename.
func CheckFilename(name string) error {
	if _, err := EncodeLine(name); err != nil {
		return err
	}
	if Filename([]byte(name)) != name {
		return ErrBadLine{Message: "leading or trailing space or control character", Offset: -1}
	}
	return nil
}

// SplitLine is a bufio.SplitFunc returning each newline terminated
// line, without the newline or a preceding carriage return. Empty lines
// are returned as empty (non-nil) tokens.
func SplitLine(b []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(b) == 0 {
		return
	}
	if idx := bytes.IndexByte(b, '\n'); idx > -1 {
		advance = idx + 1
		token = bytes.TrimSuffix(b[:idx], []byte{'\r'})
		return
	}
	if atEOF {
		err = io.ErrUnexpectedEOF
	}
	return
}

// SplitResponseLine is a bufio.SplitFunc for the server's response
// stream. Each token runs up to and including the next newline or
// sentinel byte, so the last byte of the token tells the caller which
// delimiter ended it.
func SplitResponseLine(b []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(b) == 0 {
		return
	}
	if idx := bytes.IndexAny(b, "\n\x00"); idx > -1 {
		advance = idx + 1
		token = b[:advance]
		return
	}
	if atEOF {
		err = io.ErrUnexpectedEOF
	}
	return
}

// EndsResponse reports whether token, as returned by SplitResponseLine,
// was terminated by the sentinel.
func EndsResponse(token []byte) bool {
	return len(token) > 0 && token[len(token)-1] == Sentinel
}
