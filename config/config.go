package config

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"

	"github.com/andaru/filexfer/transport"
)

const (
	DefaultNetwork = "tcp"
	DefaultAddress = "127.0.0.1:1234"
	DefaultRoot    = "."
	DefaultSalt    = "filexfer"
)

// Config is the configuration for both executables.
type Config struct {
	Server Server
	Client Client
	KCP    KCP
}

// Server configures the listening side.
type Server struct {
	Network string
	Address string
	// Root is the directory files are served from.
	Root string
}

// Client configures the requesting side.
type Client struct {
	Network string
	Address string
	// Requests are the filenames requested, in order.
	Requests []string
}

// KCP holds the options used when Network is transport.NetworkKCP.
type KCP struct {
	DataShards   int
	ParityShards int
	// Key is the passphrase the AES key is derived from. Empty disables
	// encryption.
	Key  string
	Salt string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{Network: DefaultNetwork, Address: DefaultAddress, Root: DefaultRoot},
		Client: Client{
			Network:  DefaultNetwork,
			Address:  DefaultAddress,
			Requests: []string{"test1.txt", "test2.txt", "test3.txt"},
		},
		KCP: KCP{Salt: DefaultSalt},
	}
}

var (
	xpRoot    = xpath.MustCompile(`/filexfer`)
	xpServer  = xpath.MustCompile(`/filexfer/server`)
	xpClient  = xpath.MustCompile(`/filexfer/client`)
	xpRequest = xpath.MustCompile(`/filexfer/client/request`)
	xpKCP     = xpath.MustCompile(`/filexfer/kcp`)
)

// Load reads a configuration document from r and applies it over the
// defaults.
func Load(r io.Reader) (*Config, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if xmlquery.QuerySelector(doc, xpRoot) == nil {
		return nil, errors.New("config: missing <filexfer> element")
	}

	c := Default()
	if n := xmlquery.QuerySelector(doc, xpServer); n != nil {
		setString(n, "network", &c.Server.Network)
		setString(n, "address", &c.Server.Address)
		setString(n, "root", &c.Server.Root)
	}
	if n := xmlquery.QuerySelector(doc, xpClient); n != nil {
		setString(n, "network", &c.Client.Network)
		setString(n, "address", &c.Client.Address)
	}
	if reqs := xmlquery.QuerySelectorAll(doc, xpRequest); len(reqs) > 0 {
		c.Client.Requests = c.Client.Requests[:0:0]
		for _, n := range reqs {
			c.Client.Requests = append(c.Client.Requests, strings.TrimSpace(n.InnerText()))
		}
	}
	if n := xmlquery.QuerySelector(doc, xpKCP); n != nil {
		if err := setInt(n, "data-shards", &c.KCP.DataShards); err != nil {
			return nil, err
		}
		if err := setInt(n, "parity-shards", &c.KCP.ParityShards); err != nil {
			return nil, err
		}
		setString(n, "key", &c.KCP.Key)
		setString(n, "salt", &c.KCP.Salt)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile loads the configuration document at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	defer f.Close()
	c, err := Load(f)
	return c, errors.Wrap(err, path)
}

// Validate checks c for values the drivers cannot use.
func (c *Config) Validate() error {
	switch {
	case c.Server.Network == "" || c.Server.Address == "":
		return errors.New("config: server network and address are required")
	case c.Server.Root == "":
		return errors.New("config: server root is required")
	case c.Client.Network == "" || c.Client.Address == "":
		return errors.New("config: client network and address are required")
	case c.KCP.DataShards < 0 || c.KCP.ParityShards < 0:
		return errors.New("config: kcp shard counts must not be negative")
	case c.KCP.Key != "" && c.KCP.Salt == "":
		return errors.New("config: kcp key requires a salt")
	}
	for i, req := range c.Client.Requests {
		if req == "" {
			return errors.Errorf("config: client request %d is empty", i+1)
		}
	}
	return nil
}

// TransportOptions returns the transport options for the KCP settings.
func (c *Config) TransportOptions() []transport.Option {
	var opts []transport.Option
	if c.KCP.DataShards > 0 || c.KCP.ParityShards > 0 {
		opts = append(opts, transport.WithFEC(c.KCP.DataShards, c.KCP.ParityShards))
	}
	if c.KCP.Key != "" {
		opts = append(opts, transport.WithKey(c.KCP.Key, c.KCP.Salt))
	}
	return opts
}

func attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

func setString(n *xmlquery.Node, name string, dst *string) {
	if v, ok := attr(n, name); ok {
		*dst = v
	}
}

func setInt(n *xmlquery.Node, name string, dst *int) error {
	v, ok := attr(n, name)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "config: <%s %s>", n.Data, name)
	}
	*dst = i
	return nil
}
