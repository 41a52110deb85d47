// Package corpus builds the paper database: it enumerates a labeled
// corpus of author folders, extracts and segments every paper, embeds
// both excerpts and emits one PaperRecord per paper.
package corpus

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"revmatch/internal/extract"
	"revmatch/internal/models"
	"revmatch/internal/providers"
	"revmatch/internal/segment"
	"revmatch/internal/util"
)

// PaperRef identifies one corpus paper before processing. Author comes
// from the paper's parent folder name.
type PaperRef struct {
	Author string `json:"author"`
	Paper  string `json:"paper"`
	Path   string `json:"path"`
}

type Builder struct {
	extract  extract.Func
	provider providers.EmbeddingProvider
	dim      int
}

func NewBuilder(extractFn extract.Func, provider providers.EmbeddingProvider, dim int) *Builder {
	return &Builder{extract: extractFn, provider: provider, dim: dim}
}

// Build runs the whole offline batch sequentially. A failure local to one
// paper degrades that paper's record and continues; only a missing corpus
// root aborts the run. Output order follows the sorted enumeration order,
// so rebuilds over an unchanged corpus are byte-for-byte identical.
func (b *Builder) Build(ctx context.Context, root string) ([]models.PaperRecord, error) {
	refs, err := ListPapers(root)
	if err != nil {
		return nil, err
	}
	records := make([]models.PaperRecord, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := b.ProcessPaper(ctx, ref)
		if err != nil {
			log.Printf("warning: embedding failed for %s (%s): %v", ref.Path, providers.ClassifyError(err), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ProcessPaper turns one corpus paper into a PaperRecord. Extraction
// failure is recovered locally (empty text, warning log); an embedding
// provider failure is returned to the caller alongside the degraded
// record so batch drivers can retry or keep the record as-is. The record
// itself is always valid: absent fields stay absent, never dropped.
func (b *Builder) ProcessPaper(ctx context.Context, ref PaperRef) (models.PaperRecord, error) {
	rec := models.PaperRecord{Author: ref.Author, Paper: ref.Paper}

	raw, err := b.extract(ref.Path)
	if err != nil {
		log.Printf("warning: could not extract text from %s: %v", ref.Path, err)
		raw = ""
	}
	ex := segment.Segment(raw)

	inputs := make([]string, 0, 2)
	if ex.Focused != "" {
		inputs = append(inputs, ex.Focused)
	}
	if ex.Full != "" {
		inputs = append(inputs, ex.Full)
	}
	if len(inputs) == 0 {
		return rec, nil
	}

	vectors, _, err := b.provider.Embed(ctx, providers.EmbedRequest{
		Operation: "corpus_paper_embed",
		Inputs:    inputs,
		Dimension: b.dim,
	})
	if err != nil {
		return rec, fmt.Errorf("embed excerpts for %s: %w", ref.Paper, err)
	}
	if len(vectors) != len(inputs) {
		return rec, fmt.Errorf("embed excerpts for %s: got %d vectors for %d inputs", ref.Paper, len(vectors), len(inputs))
	}

	i := 0
	if ex.Focused != "" {
		rec.Focused = models.Embedding{Vector: vectors[i]}
		i++
	}
	if ex.Full != "" {
		rec.Full = models.Embedding{Vector: vectors[i]}
	}
	return rec, nil
}

// ListPapers enumerates <root>/<author>/*.pdf in sorted path order.
func ListPapers(root string) ([]PaperRef, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", util.ErrCorpusRootNotFound, root)
		}
		return nil, fmt.Errorf("stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root is not a directory: %s", root)
	}

	authors, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root: %w", err)
	}
	refs := make([]PaperRef, 0)
	for _, a := range authors {
		if !a.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, a.Name()))
		if err != nil {
			return nil, fmt.Errorf("read author dir %s: %w", a.Name(), err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			name := f.Name()
			if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
				continue
			}
			refs = append(refs, PaperRef{
				Author: a.Name(),
				Paper:  paperName(a.Name(), name),
				Path:   filepath.Join(root, a.Name(), name),
			})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// paperName is unique within an author and stable across rebuilds.
func paperName(author, filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return author + "__" + stem + ".pdf"
}
