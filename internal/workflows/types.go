package workflows

type CorpusBuildInput struct {
	BatchID    string `json:"batch_id"`
	CorpusRoot string `json:"corpus_root"`
}

type CorpusBuildProgress struct {
	BatchID  string            `json:"batch_id"`
	Total    int               `json:"total"`
	Done     int               `json:"done"`
	Degraded int               `json:"degraded"`
	PerPaper map[string]string `json:"per_paper_status"`
}

type CorpusBuildResult struct {
	BatchID      string `json:"batch_id"`
	Records      int    `json:"records"`
	Degraded     int    `json:"degraded"`
	ManifestPath string `json:"manifest_path"`
}
