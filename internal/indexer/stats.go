package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"floorplan-ai/internal/storage"
)

const (
	// SplitterVersion is the version identifier for the passage splitter.
	// Update this when splitting logic changes significantly.
	SplitterVersion = "v1.0"
	// TokensPerRune is an approximation for token counting (4 chars per token).
	TokensPerRune = 4.0
)

// IndexingCoverageStats contains statistics about the indexed corpus.
type IndexingCoverageStats struct {
	// DocsIndexed is the total number of documents in the index.
	DocsIndexed int `json:"docs_indexed"`
	// DocsWith0Passages is the number of documents that produced no passages.
	DocsWith0Passages int `json:"docs_with_0_passages"`
	// PassagesEmbedded is the number of passages stored in the index.
	PassagesEmbedded int `json:"passages_embedded"`
	// PassageTokenStats contains statistics about token counts per passage.
	PassageTokenStats PassageTokenStats `json:"passage_token_stats"`
	// SplitterVersion is the version of the passage splitter used.
	SplitterVersion string `json:"splitter_version"`
	// IndexVersion is a hash identifying the index build (splitter + embedding model + params).
	IndexVersion string `json:"index_version"`
}

// PassageTokenStats contains statistics about token counts in passages.
type PassageTokenStats struct {
	// Min is the minimum token count across all passages.
	Min int `json:"min"`
	// Max is the maximum token count across all passages.
	Max int `json:"max"`
	// Mean is the mean token count across all passages.
	Mean float64 `json:"mean"`
	// P95 is the 95th percentile token count.
	P95 int `json:"p95"`
}

// GetIndexingCoverageStats computes coverage statistics from the database.
func (p *Pipeline) GetIndexingCoverageStats(ctx context.Context, embeddingModelName string) (*IndexingCoverageStats, error) {
	docRepo, ok := p.docRepo.(*storage.DocumentRepo)
	if !ok {
		return nil, fmt.Errorf("docRepo is not *storage.DocumentRepo, cannot query stats")
	}
	passageRepo, ok := p.passageRepo.(*storage.PassageRepo)
	if !ok {
		return nil, fmt.Errorf("passageRepo is not *storage.PassageRepo, cannot query stats")
	}

	stats := &IndexingCoverageStats{
		SplitterVersion: SplitterVersion,
	}

	db := docRepo.DB()
	if db == nil {
		return nil, fmt.Errorf("docRepo.DB() returned nil")
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&stats.DocsIndexed); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents
		 WHERE id NOT IN (SELECT DISTINCT doc_id FROM passages)`).Scan(&stats.DocsWith0Passages)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents with 0 passages: %w", err)
	}

	tokenCounts, err := p.passageTokenCounts(ctx, passageRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to compute passage token counts: %w", err)
	}
	stats.PassagesEmbedded = len(tokenCounts)
	stats.PassageTokenStats = computeTokenStats(tokenCounts)

	// Index version hash covers everything that invalidates the index when
	// it changes: splitter version, embedding model, splitting params.
	indexVersionInput := fmt.Sprintf("%s|%s|targetSize=%d|overlap=%d",
		SplitterVersion, embeddingModelName, passageTargetSize, passageOverlap)
	hash := sha256.Sum256([]byte(indexVersionInput))
	stats.IndexVersion = hex.EncodeToString(hash[:])[:16]

	return stats, nil
}

// passageTokenCounts estimates the token count of every indexed passage.
func (p *Pipeline) passageTokenCounts(ctx context.Context, passageRepo *storage.PassageRepo) ([]int, error) {
	db := passageRepo.DB()
	if db == nil {
		return nil, fmt.Errorf("passageRepo.DB() returned nil")
	}

	rows, err := db.QueryContext(ctx, "SELECT text FROM passages")
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var counts []int
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}

		runeCount := utf8.RuneCountInString(text)
		tokenCount := int(math.Round(float64(runeCount) / TokensPerRune))
		if tokenCount < 1 {
			tokenCount = 1
		}
		counts = append(counts, tokenCount)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) PassageTokenStats {
	if len(tokenCounts) == 0 {
		return PassageTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	min := sorted[0]
	max := sorted[len(sorted)-1]

	sum := 0
	for _, count := range tokenCounts {
		sum += count
	}
	mean := float64(sum) / float64(len(tokenCounts))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}
	p95 := sorted[p95Index]

	return PassageTokenStats{
		Min:  min,
		Max:  max,
		Mean: math.Round(mean*100) / 100,
		P95:  p95,
	}
}
