// Spacefund full node daemon.
//
// Usage:
//
//	spacefundd [--devnet --wallet ...] Run node
//	spacefundd --help                  Show help
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacefund-io/spacefund/config"
	"github.com/spacefund-io/spacefund/internal/node"
)

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	n, err := node.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	n.Stop()
}
