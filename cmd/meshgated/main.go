// meshgated is the gateway node process. It follows lnd's cmd/lnd main.go
// split: main() only decides the process exit code, and meshgatedMain does
// the actual work, so an early failure can log a reason before exiting
// non-zero instead of panicking past a recover.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/ridh7/meshgate/certutil"
	"github.com/ridh7/meshgate/config"
	"github.com/ridh7/meshgate/discovery"
	"github.com/ridh7/meshgate/forwarding"
	"github.com/ridh7/meshgate/gateway"
	"github.com/ridh7/meshgate/health"
	"github.com/ridh7/meshgate/meshlog"
	"github.com/ridh7/meshgate/transport"
)

type cliOptions struct {
	ConfigFile string `long:"config" description:"path to the node's TOML config file" default:"meshgate.toml"`
	LogFile    string `long:"logfile" description:"path to the log file; empty disables file logging"`
}

func main() {
	if err := meshgatedMain(); err != nil {
		fmt.Fprintf(os.Stderr, "meshgated: %v\n", err)
		os.Exit(1)
	}
}

func meshgatedMain() error {
	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	if opts.LogFile != "" {
		closeLog, err := meshlog.InitBackend(opts.LogFile)
		if err != nil {
			return fmt.Errorf("initializing log backend: %w", err)
		}
		defer closeLog()
	}
	setSubsystemLoggers()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	material, err := certutil.Load(cfg.CertPath, cfg.KeyPath, cfg.CACertPath)
	if err != nil {
		return fmt.Errorf("loading TLS material: %w", err)
	}

	srv, err := gateway.New(cfg, material)
	if err != nil {
		return fmt.Errorf("assembling node: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	return srv.Stop()
}

// setSubsystemLoggers wires each package's logger to a distinct tag, the
// way lnd's log.go assigns one subsystem tag per package.
func setSubsystemLoggers() {
	gateway.UseLogger(meshlog.NewSubsystemLogger("GATW"))
	discovery.UseLogger(meshlog.NewSubsystemLogger("DISC"))
	forwarding.UseLogger(meshlog.NewSubsystemLogger("FWD "))
	health.UseLogger(meshlog.NewSubsystemLogger("HLTH"))
	transport.UseLogger(meshlog.NewSubsystemLogger("HTTP"))
	certutil.UseLogger(meshlog.NewSubsystemLogger("TLS "))
	config.UseLogger(meshlog.NewSubsystemLogger("CFG "))
}
