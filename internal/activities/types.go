package activities

import (
	"revmatch/internal/corpus"
	"revmatch/internal/models"
)

type ListCorpusPapersInput struct {
	CorpusRoot string `json:"corpus_root"`
}

type ListCorpusPapersOutput struct {
	Papers []corpus.PaperRef `json:"papers"`
}

type ProcessPaperInput struct {
	Ref corpus.PaperRef `json:"ref"`
}

type ProcessPaperOutput struct {
	Record models.PaperRecord `json:"record"`
}

type SaveDatabaseInput struct {
	Records []models.PaperRecord `json:"records"`
}

type WriteBuildManifestInput struct {
	BatchID    string               `json:"batch_id"`
	CorpusRoot string               `json:"corpus_root"`
	Records    []models.PaperRecord `json:"records"`
}

type WriteBuildManifestOutput struct {
	Path string `json:"path"`
}
