package textsplit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "empty text yields no chunks",
			text:       "",
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 0,
		},
		{
			name:       "short text yields single chunk",
			text:       "hello world",
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 1,
		},
		{
			name:       "exact chunk size yields single chunk",
			text:       strings.Repeat("a", 1000),
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 1,
		},
		{
			name:       "5000 chars with size 1000 overlap 200 yields 6 chunks",
			text:       strings.Repeat("x", 5000),
			chunkSize:  1000,
			overlap:    200,
			wantChunks: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.text, tt.chunkSize, tt.overlap)
			assert.Len(t, chunks, tt.wantChunks)
		})
	}
}

func TestSplitCoverage(t *testing.T) {
	// Concatenating chunks with the overlap removed must reconstruct the
	// original text, with no gaps.
	text := "abcdefghijklmnopqrstuvwxyz0123456789"
	chunkSize := 10
	overlap := 3

	chunks := Split(text, chunkSize, overlap)
	assert.Greater(t, len(chunks), 1)

	var rebuilt strings.Builder
	for i, c := range chunks {
		if i == 0 {
			rebuilt.WriteString(c)
			continue
		}
		assert.LessOrEqual(t, len(c), chunkSize)
		// Consecutive chunks share exactly 'overlap' characters.
		prev := chunks[i-1]
		assert.Equal(t, prev[len(prev)-overlap:], c[:overlap])
		rebuilt.WriteString(c[overlap:])
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 100)
	a := Split(text, 150, 30)
	b := Split(text, 150, 30)
	assert.Equal(t, a, b)
}

func TestSplitOverlapLargerThanChunk(t *testing.T) {
	// Degenerate configuration must not loop forever; falls back to
	// non-overlapping steps.
	text := strings.Repeat("z", 50)
	chunks := Split(text, 10, 10)
	assert.Len(t, chunks, 5)
}

func TestSplitMultibyte(t *testing.T) {
	// Rune-based slicing must never cut a multibyte character in half.
	text := strings.Repeat("日本語テキスト", 100)
	chunks := Split(text, 100, 20)
	for _, c := range chunks {
		assert.True(t, strings.ContainsRune("日本語テキスト", []rune(c)[0]))
	}
}
