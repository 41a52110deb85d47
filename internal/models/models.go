package models

// Embedding is an optional fixed-length vector. A nil Vector marks an
// excerpt that could not be extracted or embedded; the zero-vector
// substitution for absent embeddings happens only at matrix assembly time
// inside the engine, so the absent state stays inspectable everywhere else.
type Embedding struct {
	Vector []float32 `json:"vector,omitempty"`
}

func (e Embedding) Present() bool {
	return len(e.Vector) > 0
}

func (e Embedding) Dim() int {
	return len(e.Vector)
}

// PaperRecord is one corpus paper with its two excerpt embeddings.
// Records are never dropped when extraction or segmentation fails, only
// degraded, so per-author paper counts stay accurate.
type PaperRecord struct {
	Author  string    `json:"author"`
	Paper   string    `json:"paper"`
	Focused Embedding `json:"focused_embedding"`
	Full    Embedding `json:"full_embedding"`
}

func (r PaperRecord) Degraded() bool {
	return !r.Focused.Present() && !r.Full.Present()
}

// QueryVectors carries the two embedded representations of an incoming
// paper. A nil channel means the caller could not produce that
// representation; the channels are never silently duplicated from one
// another.
type QueryVectors struct {
	Focused []float32 `json:"focused"`
	Full    []float32 `json:"full"`
}

// AuthorScore is one ranked row: best single-paper fused score, average
// fused score over all of that author's papers (degraded papers score
// zero and pull the mean down), and the author's paper count.
type AuthorScore struct {
	Author string  `json:"author"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}
