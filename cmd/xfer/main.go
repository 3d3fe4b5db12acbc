// Command xfer requests files from an xferd server and copies them to
// standard output, in order.
//
// The files requested are the command line arguments or, when there are
// none, the configured request list.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/golang/glog"
	context "golang.org/x/net/context"

	"github.com/andaru/filexfer/client"
	"github.com/andaru/filexfer/config"
)

func main() {
	var (
		configFlag  = flag.String("config", "", "XML configuration file")
		timeoutFlag = flag.Duration("timeout", 10*time.Second, "connection timeout")
	)
	flag.Parse()
	defer glog.Flush()

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.LoadFile(*configFlag); err != nil {
			glog.Exitf("can't load configuration: %v", err)
		}
	}
	requests := cfg.Client.Requests
	if flag.NArg() > 0 {
		requests = flag.Args()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	c, err := client.Dial(ctx, cfg.Client.Network, cfg.Client.Address, cfg.TransportOptions()...)
	cancel()
	if err != nil {
		glog.Exitf("can't connect: %v", err)
	}

	for _, name := range requests {
		next, n, err := client.Fetch(c, name, os.Stdout)
		if err != nil {
			if next == nil {
				glog.Exitf("request %q: %v", name, err)
			}
			glog.Warningf("skipping request %q: %v", name, err)
			continue
		}
		glog.V(1).Infof("received %d bytes for %q", n, name)
		c = next
	}
	if err := c.Close(); err != nil {
		glog.Exitf("close: %v", err)
	}
}
