package activities

import (
	"context"
	"path/filepath"

	"revmatch/internal/config"
	"revmatch/internal/corpus"
	"revmatch/internal/extract"
	"revmatch/internal/providers"
	"revmatch/internal/store"
)

type Activities struct {
	cfg     config.Config
	builder *corpus.Builder
	records store.RecordStore
}

func New(ctx context.Context, cfg config.Config) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:     cfg,
		builder: corpus.NewBuilder(extract.RawText, pm.FirstEmbedProvider(), cfg.EmbedDim),
		records: st,
	}, nil
}

func (a *Activities) ListCorpusPapersActivity(ctx context.Context, in ListCorpusPapersInput) (ListCorpusPapersOutput, error) {
	_ = ctx
	root := in.CorpusRoot
	if root == "" {
		root = a.cfg.CorpusRoot
	}
	refs, err := corpus.ListPapers(root)
	if err != nil {
		return ListCorpusPapersOutput{}, err
	}
	return ListCorpusPapersOutput{Papers: refs}, nil
}

// ProcessPaperActivity embeds one paper. Extraction failure degrades the
// record inside the builder; an embedding failure surfaces as an activity
// error so the workflow's retry policy applies before the paper falls
// back to a degraded record.
func (a *Activities) ProcessPaperActivity(ctx context.Context, in ProcessPaperInput) (ProcessPaperOutput, error) {
	rec, err := a.builder.ProcessPaper(ctx, in.Ref)
	if err != nil {
		return ProcessPaperOutput{}, err
	}
	return ProcessPaperOutput{Record: rec}, nil
}

func (a *Activities) SaveDatabaseActivity(ctx context.Context, in SaveDatabaseInput) error {
	return a.records.Save(ctx, in.Records)
}

func (a *Activities) WriteBuildManifestActivity(ctx context.Context, in WriteBuildManifestInput) (WriteBuildManifestOutput, error) {
	_ = ctx
	path := filepath.Join(filepath.Dir(a.cfg.DatabasePath), "build_manifest.json")
	m := corpus.NewManifest(in.BatchID, in.CorpusRoot, in.Records)
	if err := corpus.WriteManifest(path, m); err != nil {
		return WriteBuildManifestOutput{}, err
	}
	return WriteBuildManifestOutput{Path: path}, nil
}
