package hybrid

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunkContext_SingleChunkShortCircuit(t *testing.T) {
	context := "Page 1: The kitchen is on the ground floor."
	question := "Where is the kitchen?"

	chunks := ChunkContext(context, question, 4000)

	if len(chunks) != 1 {
		t.Fatalf("ChunkContext() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].ChunkID != 1 {
		t.Errorf("chunk_id = %d, want 1", chunks[0].ChunkID)
	}
	if chunks[0].TotalChunks != 1 {
		t.Errorf("total_chunks = %d, want 1", chunks[0].TotalChunks)
	}
	if chunks[0].Text != context {
		t.Errorf("chunk text = %q, want original context", chunks[0].Text)
	}
}

func TestChunkContext_BudgetInvariant(t *testing.T) {
	// Build a long multi-paragraph context that cannot fit one chunk.
	var builder strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&builder, "Page %d: This paragraph describes room number %d with its dimensions, fixtures, doors and windows in enough detail to take real space.\n\n", i%10+1, i)
	}
	context := strings.TrimSuffix(builder.String(), "\n\n")
	question := "What rooms are on the ground floor?"
	maxTokens := 3000

	chunks := ChunkContext(context, question, maxTokens)

	if len(chunks) < 2 {
		t.Fatalf("ChunkContext() returned %d chunks, want multiple", len(chunks))
	}

	available := maxTokens - promptReserveTokens - estimateTokens(question) - responseReserveTokens
	for i, chunk := range chunks {
		if got := estimateTokens(chunk.Text); got > available {
			t.Errorf("chunk[%d] estimated tokens = %d, exceeds available budget %d", i, got, available)
		}
	}
}

func TestChunkContext_TotalChunksConsistency(t *testing.T) {
	var builder strings.Builder
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&builder, "Paragraph %d has some descriptive content about the floor plan that accumulates across the chunk budget boundary.\n\n", i)
	}

	chunks := ChunkContext(builder.String(), "question", 2000)

	for i, chunk := range chunks {
		if chunk.TotalChunks != len(chunks) {
			t.Errorf("chunk[%d].TotalChunks = %d, want %d", i, chunk.TotalChunks, len(chunks))
		}
		if chunk.ChunkID != i+1 {
			t.Errorf("chunk[%d].ChunkID = %d, want %d", i, chunk.ChunkID, i+1)
		}
	}
}

func TestChunkContext_PreservesContentOrder(t *testing.T) {
	paragraphs := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Marker-%03d with additional words to give each paragraph enough weight against the token budget.", i))
	}
	context := strings.Join(paragraphs, "\n\n")

	chunks := ChunkContext(context, "q", 1500)

	// Concatenating the chunks must preserve every paragraph in order.
	var rejoined strings.Builder
	for _, chunk := range chunks {
		if rejoined.Len() > 0 {
			rejoined.WriteString("\n\n")
		}
		rejoined.WriteString(chunk.Text)
	}

	if rejoined.String() != context {
		t.Error("concatenated chunks do not reconstruct the original context")
	}
}

func TestChunkContext_OversizedParagraphDescendsToWords(t *testing.T) {
	words := make([]string, 0, 4000)
	for i := 0; i < 4000; i++ {
		words = append(words, fmt.Sprintf("word%d", i))
	}
	context := strings.Join(words, " ") // one giant paragraph, no blank lines

	chunks := ChunkContext(context, "q", 2000)

	if len(chunks) < 2 {
		t.Fatalf("ChunkContext() returned %d chunks, want multiple word-level chunks", len(chunks))
	}

	available := 2000 - promptReserveTokens - estimateTokens("q") - responseReserveTokens
	for i, chunk := range chunks {
		if got := estimateTokens(chunk.Text); got > available {
			t.Errorf("chunk[%d] estimated tokens = %d, exceeds budget %d", i, got, available)
		}
	}

	// Word order must be preserved across chunk boundaries.
	var collected []string
	for _, chunk := range chunks {
		collected = append(collected, strings.Fields(chunk.Text)...)
	}
	if len(collected) != len(words) {
		t.Fatalf("got %d words after chunking, want %d", len(collected), len(words))
	}
	for i, word := range collected {
		if word != words[i] {
			t.Fatalf("word[%d] = %q, want %q", i, word, words[i])
		}
	}
}

func TestChunkContext_OversizedWordTruncated(t *testing.T) {
	giant := strings.Repeat("x", 100000) // one word far beyond any budget

	chunks := ChunkContext(giant, "q", 2000)

	if len(chunks) != 1 {
		t.Fatalf("ChunkContext() returned %d chunks, want 1 truncated chunk", len(chunks))
	}

	available := 2000 - promptReserveTokens - estimateTokens("q") - responseReserveTokens
	if got := estimateTokens(chunks[0].Text); got > available {
		t.Errorf("truncated chunk estimated tokens = %d, exceeds budget %d", got, available)
	}
	if len(chunks[0].Text) >= len(giant) {
		t.Error("oversized word was not truncated")
	}
}

func TestChunkContext_BudgetConsumedByOverhead(t *testing.T) {
	// A ceiling below the fixed reserves leaves no budget at all; the
	// chunker degrades to character-level truncation instead of failing.
	context := strings.Repeat("content ", 1000)

	chunks := ChunkContext(context, "a question", 500)

	if len(chunks) != 1 {
		t.Fatalf("ChunkContext() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text == "" {
		t.Error("truncated chunk is empty")
	}
	if len(chunks[0].Text) > 500*runesPerToken {
		t.Errorf("truncated chunk has %d chars, want at most %d", len(chunks[0].Text), 500*runesPerToken)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"short", "abc", 1},
		{"exact multiple", strings.Repeat("a", 40), 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimateTokens(tt.text); got != tt.want {
				t.Errorf("estimateTokens(%q len=%d) = %d, want %d", tt.text[:min(len(tt.text), 10)], len(tt.text), got, tt.want)
			}
		})
	}
}
