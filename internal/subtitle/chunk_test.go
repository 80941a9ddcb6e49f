package subtitle

import (
	"fmt"
	"testing"
)

func makeWords(n int) []Word {
	words := make([]Word, n)
	for i := range words {
		words[i] = Word{
			Text:  fmt.Sprintf("w%d", i),
			Start: float64(i) * 0.5,
			End:   float64(i+1) * 0.5,
		}
	}
	return words
}

func TestChunkWordsCounts(t *testing.T) {
	tests := []struct {
		n          int
		wantChunks int
	}{
		{1, 1},
		{4, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
		{25, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_words", tt.n), func(t *testing.T) {
			chunks := ChunkWords(makeWords(tt.n))
			if len(chunks) != tt.wantChunks {
				t.Fatalf("ChunkWords(%d words) = %d chunks, want %d", tt.n, len(chunks), tt.wantChunks)
			}

			// concatenation preserves the input order
			var got []Word
			for _, c := range chunks {
				got = append(got, c.Words()...)
			}
			if len(got) != tt.n {
				t.Fatalf("chunks hold %d words, want %d", len(got), tt.n)
			}
			for i, w := range got {
				if w.Text != fmt.Sprintf("w%d", i) {
					t.Fatalf("word %d out of order: %q", i, w.Text)
				}
			}
		})
	}
}

func TestChunkWordsLineShape(t *testing.T) {
	chunks := ChunkWords(makeWords(10))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Lines) != 2 || len(chunks[0].Lines[0]) != 4 || len(chunks[0].Lines[1]) != 4 {
		t.Errorf("first chunk should be two full lines of four, got %v", lineShape(chunks[0]))
	}
	if len(chunks[1].Lines) != 1 || len(chunks[1].Lines[0]) != 2 {
		t.Errorf("second chunk should be one line of two, got %v", lineShape(chunks[1]))
	}
}

func lineShape(c Chunk) []int {
	shape := make([]int, len(c.Lines))
	for i, line := range c.Lines {
		shape[i] = len(line)
	}
	return shape
}

func TestChunkTimeSpan(t *testing.T) {
	chunks := ChunkWords(makeWords(8))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Start != 0 {
		t.Errorf("chunk start = %v, want first word's start", chunks[0].Start)
	}
	if chunks[0].End != 4 {
		t.Errorf("chunk end = %v, want last word's end", chunks[0].End)
	}
}

func TestChunkWordsEmpty(t *testing.T) {
	if chunks := ChunkWords(nil); chunks != nil {
		t.Fatalf("no words should produce no chunks, got %d", len(chunks))
	}
}

func TestHighlightColorIndex(t *testing.T) {
	tests := []struct {
		counter    int
		cycleAfter int
		numColors  int
		want       int
	}{
		{0, 2, 3, 0},
		{1, 2, 3, 0},
		{2, 2, 3, 1},
		{3, 2, 3, 1},
		{4, 2, 3, 2},
		{6, 2, 3, 0},
		{5, 1, 2, 1},
		{7, 0, 2, 1}, // zero cycle treated as 1
		{9, 2, 0, 0}, // empty palette guarded
	}

	for _, tt := range tests {
		got := HighlightColorIndex(tt.counter, tt.cycleAfter, tt.numColors)
		if got != tt.want {
			t.Errorf("HighlightColorIndex(%d, %d, %d) = %d, want %d",
				tt.counter, tt.cycleAfter, tt.numColors, got, tt.want)
		}
	}
}
