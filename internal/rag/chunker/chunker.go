package chunker

import "strings"

// Chunk splits text into overlapping word-bounded windows. Words are
// whitespace delimited, there is no sentence awareness - the overlap is what
// keeps meaning that straddles a boundary retrievable from both sides.
//
// Inputs of at most chunkSize words come back as a single chunk equal to the
// whole input. Empty or all-whitespace input comes back as a single empty
// chunk, which callers should treat as nothing to process.
func Chunk(text string, chunkSize int, overlap int) []string {
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	if len(words) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if start+step >= len(words) {
			break
		}
	}

	return chunks
}
