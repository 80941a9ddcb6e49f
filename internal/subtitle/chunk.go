package subtitle

const (
	// words rendered per line in word-highlight templates
	maxWordsPerLine = 4
	// lines rendered simultaneously per chunk
	maxLinesPerChunk = 2
)

// Chunk is one visual unit of a word-highlight template: up to
// maxLinesPerChunk lines of up to maxWordsPerLine words, rendered together
// for the chunk's whole time span.
type Chunk struct {
	Lines [][]Word
	Start float64
	End   float64
}

// Words returns the chunk's words flattened in display order.
func (c Chunk) Words() []Word {
	var out []Word
	for _, line := range c.Lines {
		out = append(out, line...)
	}
	return out
}

// ChunkWords regroups a segment's words into chunks. Word order is
// preserved; a segment with no words produces no chunks.
func ChunkWords(words []Word) []Chunk {
	if len(words) == 0 {
		return nil
	}

	var lines [][]Word
	var line []Word
	for i, w := range words {
		line = append(line, w)
		if len(line) == maxWordsPerLine || i == len(words)-1 {
			lines = append(lines, line)
			line = nil
		}
	}

	var chunks []Chunk
	for i := 0; i < len(lines); i += maxLinesPerChunk {
		end := i + maxLinesPerChunk
		if end > len(lines) {
			end = len(lines)
		}
		group := lines[i:end]

		first := group[0][0]
		lastLine := group[len(group)-1]
		last := lastLine[len(lastLine)-1]

		chunks = append(chunks, Chunk{
			Lines: group,
			Start: first.Start,
			End:   last.End,
		})
	}

	return chunks
}

// HighlightColorIndex derives the palette index for a chunk from the
// running chunk counter. The counter is global across a whole render job,
// in segment order then chunk order, so color assignment depends only on
// position in the caption stream.
func HighlightColorIndex(counter, cycleAfterChunks, numColors int) int {
	if numColors <= 0 {
		return 0
	}
	if cycleAfterChunks <= 0 {
		cycleAfterChunks = 1
	}
	return (counter / cycleAfterChunks) % numColors
}
