// Command xferd serves files from a directory to xfer clients.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	context "golang.org/x/net/context"

	"github.com/andaru/filexfer/config"
	"github.com/andaru/filexfer/filestore"
	"github.com/andaru/filexfer/server"
)

func main() {
	var (
		configFlag = flag.String("config", "", "XML configuration file")
		rootFlag   = flag.String("root", "", "directory to serve (overrides the configuration)")
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
	if *rootFlag != "" {
		cfg.Server.Root = *rootFlag
	}
	if fi, err := os.Stat(cfg.Server.Root); err != nil {
		glog.Exitf("can't open root directory: %v", err)
	} else if !fi.IsDir() {
		glog.Exitf("root %s is not a directory", cfg.Server.Root)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server.Server{
		Store:   filestore.Dir(cfg.Server.Root),
		Network: cfg.Server.Network,
		Address: cfg.Server.Address,
		Options: cfg.TransportOptions(),
	}
	if err := srv.ListenAndServe(ctx); err != nil && err != context.Canceled {
		glog.Errorf("file server: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Info("file server stopped")
}
