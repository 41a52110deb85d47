package corpus

import (
	"time"

	"revmatch/internal/models"
	"revmatch/internal/util"
)

// Manifest summarizes one completed build, written next to the database
// for quick inspection of rebuild health.
type Manifest struct {
	BatchID     string    `json:"batch_id"`
	CorpusRoot  string    `json:"corpus_root"`
	Records     int       `json:"records"`
	Authors     int       `json:"authors"`
	Degraded    int       `json:"degraded"`
	GeneratedAt time.Time `json:"generated_at"`
}

func NewManifest(batchID, root string, records []models.PaperRecord) Manifest {
	authors := map[string]struct{}{}
	degraded := 0
	for _, r := range records {
		authors[r.Author] = struct{}{}
		if r.Degraded() {
			degraded++
		}
	}
	return Manifest{
		BatchID:     batchID,
		CorpusRoot:  root,
		Records:     len(records),
		Authors:     len(authors),
		Degraded:    degraded,
		GeneratedAt: time.Now().UTC(),
	}
}

func WriteManifest(path string, m Manifest) error {
	return util.WriteJSONAtomic(path, m)
}
