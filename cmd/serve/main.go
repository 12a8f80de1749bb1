// Command serve exposes a generated blockface dataset over a local
// read-only HTTP API for spot-checking conversion output.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/fikei/curbmatch/internal/config"
	"github.com/fikei/curbmatch/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("serve failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadServe()
	if err != nil {
		return err
	}

	dataset := flag.String("dataset", cfg.DatasetPath, "generated blockface dataset path")
	port := flag.Int("port", cfg.Port, "listen port")
	flag.Parse()

	if *dataset == "" {
		flag.Usage()
		return fmt.Errorf("-dataset is required")
	}
	cfg.Port = *port

	store, err := server.NewStore(*dataset)
	if err != nil {
		return err
	}
	log.Printf("loaded %d blockfaces from %s", len(store.Document().Blockfaces), *dataset)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg, store)
	log.Printf("preview API listening on %s", cfg.ListenAddr())
	return srv.Run(ctx)
}
