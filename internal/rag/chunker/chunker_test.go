package chunker_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/docmind/docmind/internal/config"
	"github.com/docmind/docmind/internal/rag/chunker"
)

// makeWords builds a numbered word sequence so window boundaries are easy to
// assert on.
func makeWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestChunk_Windows(t *testing.T) {
	words := makeWords(900)
	text := strings.Join(words, " ")

	chunks := chunker.Chunk(text, config.ChunkSizeWords, config.ChunkOverlapWords)

	if len(chunks) != 3 {
		t.Fatalf("Chunk count got %d, want 3", len(chunks))
	}

	wantRanges := [][2]int{{0, 400}, {350, 750}, {700, 900}}
	for i, r := range wantRanges {
		want := strings.Join(words[r[0]:r[1]], " ")
		if chunks[i] != want {
			t.Errorf("Chunk %d does not cover words [%d,%d)", i, r[0], r[1])
		}
	}
}

// Window starts advance by chunkSize-overlap until a start falls past the
// text end, so a window ending exactly at the last word is still followed by
// one final remainder window.
func TestChunk_TrailingRemainderWindow(t *testing.T) {
	words := makeWords(10)
	text := strings.Join(words, " ")

	chunks := chunker.Chunk(text, 4, 1)

	if len(chunks) != 4 {
		t.Fatalf("Chunk count got %d, want 4", len(chunks))
	}

	wantRanges := [][2]int{{0, 4}, {3, 7}, {6, 10}, {9, 10}}
	for i, r := range wantRanges {
		want := strings.Join(words[r[0]:r[1]], " ")
		if chunks[i] != want {
			t.Errorf("Chunk %d got %q, want words [%d,%d)", i, chunks[i], r[0], r[1])
		}
	}
}

func TestChunk_ShortInputIsSingleChunk(t *testing.T) {
	text := "a b c"
	chunks := chunker.Chunk(text, config.ChunkSizeWords, config.ChunkOverlapWords)

	if len(chunks) != 1 {
		t.Fatalf("Chunk count got %d, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("Short input should come back whole, got %q", chunks[0])
	}
}

func TestChunk_ExactWindowSize(t *testing.T) {
	text := strings.Join(makeWords(400), " ")
	chunks := chunker.Chunk(text, 400, 50)

	if len(chunks) != 1 {
		t.Fatalf("Chunk count got %d, want 1", len(chunks))
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		chunks := chunker.Chunk(text, config.ChunkSizeWords, config.ChunkOverlapWords)
		if len(chunks) != 1 || chunks[0] != "" {
			t.Errorf("Empty input %q got %v, want a single empty chunk", text, chunks)
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Join(makeWords(1234), " ")

	first := chunker.Chunk(text, config.ChunkSizeWords, config.ChunkOverlapWords)
	second := chunker.Chunk(text, config.ChunkSizeWords, config.ChunkOverlapWords)

	if len(first) != len(second) {
		t.Fatalf("Chunk counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Chunk %d differs between runs", i)
		}
	}
}

func TestChunk_ConsecutiveWindowsOverlap(t *testing.T) {
	words := makeWords(1000)
	text := strings.Join(words, " ")

	chunks := chunker.Chunk(text, config.ChunkSizeWords, config.ChunkOverlapWords)

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		curr := strings.Fields(chunks[i])

		tail := strings.Join(prev[len(prev)-config.ChunkOverlapWords:], " ")
		head := strings.Join(curr[:config.ChunkOverlapWords], " ")
		if tail != head {
			t.Errorf("Chunks %d and %d do not share a %d word overlap", i-1, i, config.ChunkOverlapWords)
		}
	}
}
