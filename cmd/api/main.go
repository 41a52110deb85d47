package main

import (
	"log"
	"net/http"

	"revmatch/internal/api"
	"revmatch/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	s := api.NewServer(cfg)
	log.Printf("revmatch api listening on %s store=%s embed_providers=%q", cfg.APIAddr, cfg.Store, cfg.EmbedProviders)
	if err := http.ListenAndServe(cfg.APIAddr, s.Routes()); err != nil {
		log.Fatal(err)
	}
}
