// Package main starts the empiregen command line tool.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	empiregencmd "github.com/louisbranch/empiregen/internal/cmd/empiregen"
	"github.com/louisbranch/empiregen/internal/platform/config"
)

func main() {
	cfg, err := empiregencmd.LoadConfig()
	if err != nil {
		config.Exitf("empiregen: %v", err)
	}
	log.SetPrefix("[EMPIREGEN] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := empiregencmd.NewRootCommand(&cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		msg, code := empiregencmd.Describe(err, cfg.Locale)
		config.ExitCodef(code, "empiregen: %s", msg)
	}
}
