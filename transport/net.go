package transport

import (
	"crypto/sha1"
	"net"

	"github.com/pkg/errors"
	"github.com/xtaci/kcp-go"
	"golang.org/x/crypto/pbkdf2"
	context "golang.org/x/net/context"
)

// NetworkKCP selects a KCP stream over UDP in Dial and Listen. Any
// other network name is passed to package net.
const NetworkKCP = "kcp"

const (
	keyIterations = 4096
	keyLength     = 32
)

type options struct {
	dataShards   int
	parityShards int
	passphrase   string
	salt         string
}

// Option is a Dial or Listen option.
type Option func(*options)

// WithFEC sets the KCP forward error correction shard counts. Both
// peers must use the same values. Ignored for other networks.
func WithFEC(dataShards, parityShards int) Option {
	return func(o *options) {
		if dataShards < 0 {
			dataShards = 0
		}
		if parityShards < 0 {
			parityShards = 0
		}
		o.dataShards, o.parityShards = dataShards, parityShards
	}
}

// WithKey enables AES encryption of KCP packets with a key derived from
// passphrase and salt. Ignored for other networks.
func WithKey(passphrase, salt string) Option {
	return func(o *options) { o.passphrase, o.salt = passphrase, salt }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) blockCrypt() (kcp.BlockCrypt, error) {
	if o.passphrase == "" {
		return nil, nil
	}
	key := pbkdf2.Key([]byte(o.passphrase), []byte(o.salt), keyIterations, keyLength, sha1.New)
	return kcp.NewAESBlockCrypt(key)
}

// Dial connects to address on the named network and returns the
// Transport for the connection.
func Dial(ctx context.Context, network, address string, opts ...Option) (*Transport, error) {
	if network != NetworkKCP {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, address)
		if err != nil {
			return nil, errors.Wrapf(err, "dial %s %s", network, address)
		}
		return New(conn), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	block, err := o.blockCrypt()
	if err != nil {
		return nil, errors.Wrap(err, "kcp block crypt")
	}
	sess, err := kcp.DialWithOptions(address, block, o.dataShards, o.parityShards)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s %s", network, address)
	}
	tuneSession(sess)
	return New(sess), nil
}

// Listen announces on address of the named network. Connections
// accepted from the returned listener are passed to New by servers.
func Listen(network, address string, opts ...Option) (net.Listener, error) {
	if network != NetworkKCP {
		l, err := net.Listen(network, address)
		return l, errors.Wrapf(err, "listen %s %s", network, address)
	}

	o := newOptions(opts)
	block, err := o.blockCrypt()
	if err != nil {
		return nil, errors.Wrap(err, "kcp block crypt")
	}
	l, err := kcp.ListenWithOptions(address, block, o.dataShards, o.parityShards)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s %s", network, address)
	}
	return &kcpListener{l}, nil
}

// kcpListener applies session settings to each accepted connection.
type kcpListener struct{ *kcp.Listener }

func (l *kcpListener) Accept() (net.Conn, error) {
	sess, err := l.AcceptKCP()
	if err != nil {
		return nil, err
	}
	tuneSession(sess)
	return sess, nil
}

// tuneSession configures a KCP session for a lock-step byte stream:
// stream mode, and no delay so single byte writes are not held back.
func tuneSession(sess *kcp.UDPSession) {
	sess.SetStreamMode(true)
	sess.SetNoDelay(1, 10, 2, 1)
	sess.SetWindowSize(128, 128)
}
