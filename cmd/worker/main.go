package main

import (
	"context"
	"log"
	"time"

	"revmatch/internal/activities"
	"revmatch/internal/config"
	"revmatch/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a, err := activities.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	activities.Register(w, a)

	log.Printf("revmatch worker listening on %s queue=%s store=%s embed_providers=%q", cfg.TemporalAddress, cfg.TemporalTaskQueue, cfg.Store, cfg.EmbedProviders)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal(err)
	}
}
