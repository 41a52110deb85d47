// Package engine ranks candidate reviewer authors for a query paper by a
// dual-channel cosine search over the precomputed paper database.
package engine

import (
	"math"
	"sort"

	"revmatch/internal/models"
)

// Recommend scores every database paper against the query on both
// channels (focused vs focused, full vs full), fuses the channels by
// taking the per-paper maximum, aggregates fused scores by author and
// returns at most topK rows sorted descending by Max. An empty database
// or topK <= 0 yields an empty result; ties keep database order.
func Recommend(q models.QueryVectors, db []models.PaperRecord, topK int) []models.AuthorScore {
	if topK <= 0 || len(db) == 0 {
		return []models.AuthorScore{}
	}

	dim := embeddingDim(q, db)
	focusedMatrix := assembleMatrix(db, dim, func(r models.PaperRecord) models.Embedding { return r.Focused })
	fullMatrix := assembleMatrix(db, dim, func(r models.PaperRecord) models.Embedding { return r.Full })

	scoreA := similarities(q.Focused, focusedMatrix)
	scoreB := similarities(q.Full, fullMatrix)

	fused := make([]float64, len(db))
	for i := range fused {
		fused[i] = math.Max(scoreA[i], scoreB[i])
	}

	return rankAuthors(db, fused, topK)
}

// SortByMean re-orders already computed scores by descending Mean without
// recomputing similarities. The input slice is not modified.
func SortByMean(scores []models.AuthorScore) []models.AuthorScore {
	out := make([]models.AuthorScore, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean > out[j].Mean })
	return out
}

// assembleMatrix builds one dense row per database record, substituting a
// zero vector where the record's embedding is absent. The substitution
// keeps every paper in both searches; a paper missing a channel scores
// exactly zero there instead of being skipped.
func assembleMatrix(db []models.PaperRecord, dim int, pick func(models.PaperRecord) models.Embedding) [][]float32 {
	matrix := make([][]float32, len(db))
	zero := make([]float32, dim)
	for i, r := range db {
		if e := pick(r); e.Present() {
			matrix[i] = e.Vector
		} else {
			matrix[i] = zero
		}
	}
	return matrix
}

func similarities(query []float32, matrix [][]float32) []float64 {
	out := make([]float64, len(matrix))
	for i, row := range matrix {
		out[i] = cosine(query, row)
	}
	return out
}

// cosine returns the cosine similarity of two vectors, defined as 0 (not
// NaN) whenever either vector is zero or absent.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankAuthors groups fused per-paper scores by author in first-appearance
// order, computes max/mean/count, sorts by descending Max (stable, so
// all-zero scores keep input order) and truncates to topK.
func rankAuthors(db []models.PaperRecord, fused []float64, topK int) []models.AuthorScore {
	index := make(map[string]int, len(db))
	scores := make([]models.AuthorScore, 0)
	sums := make([]float64, 0)
	for i, r := range db {
		j, ok := index[r.Author]
		if !ok {
			j = len(scores)
			index[r.Author] = j
			scores = append(scores, models.AuthorScore{Author: r.Author, Max: fused[i]})
			sums = append(sums, 0)
		}
		if fused[i] > scores[j].Max {
			scores[j].Max = fused[i]
		}
		sums[j] += fused[i]
		scores[j].Count++
	}
	for j := range scores {
		scores[j].Mean = sums[j] / float64(scores[j].Count)
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Max > scores[j].Max })
	if topK < len(scores) {
		scores = scores[:topK]
	}
	return scores
}

func embeddingDim(q models.QueryVectors, db []models.PaperRecord) int {
	if len(q.Focused) > 0 {
		return len(q.Focused)
	}
	if len(q.Full) > 0 {
		return len(q.Full)
	}
	for _, r := range db {
		if r.Focused.Present() {
			return r.Focused.Dim()
		}
		if r.Full.Present() {
			return r.Full.Dim()
		}
	}
	return 0
}
