// Command builder rebuilds the paper database synchronously, without
// Temporal: useful for the first build and for offline environments.
package main

import (
	"context"
	"log"
	"path/filepath"

	"revmatch/internal/config"
	"revmatch/internal/corpus"
	"revmatch/internal/extract"
	"revmatch/internal/providers"
	"revmatch/internal/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	ctx := context.Background()

	pm, err := providers.NewManager(cfg)
	if err != nil {
		log.Fatal(err)
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("building paper database from %s embed_providers=%q", cfg.CorpusRoot, cfg.EmbedProviders)
	b := corpus.NewBuilder(extract.RawText, pm.FirstEmbedProvider(), cfg.EmbedDim)
	records, err := b.Build(ctx, cfg.CorpusRoot)
	if err != nil {
		log.Fatal(err)
	}
	if err := st.Save(ctx, records); err != nil {
		log.Fatal(err)
	}

	m := corpus.NewManifest(uuid.NewString(), cfg.CorpusRoot, records)
	manifestPath := filepath.Join(filepath.Dir(cfg.DatabasePath), "build_manifest.json")
	if err := corpus.WriteManifest(manifestPath, m); err != nil {
		log.Fatal(err)
	}
	log.Printf("saved %d records (%d authors, %d degraded) to %s", m.Records, m.Authors, m.Degraded, cfg.DatabasePath)
}
