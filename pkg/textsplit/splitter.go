package textsplit

// Split cuts a long string into chunks of at most 'chunkSize' characters.
// Consecutive chunks share 'overlap' characters so context survives chunk
// boundaries. This is a simple character-based splitter. Ideally, use a
// tokenizer-aware splitter.
func Split(text string, chunkSize int, overlap int) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
