// Package tokenizer provides text tokenization for the Maya1 prompt framer.
// The primary implementation wraps a SentencePiece model matching the
// upstream checkpoint's text vocabulary. Control tokens are not part of this
// boundary; the prompt framer splices them into sequences as raw ids.
package tokenizer

// Tokenizer encodes prompt text into vocabulary token ids.
type Tokenizer interface {
	// Encode tokenizes text and returns token ids.
	Encode(text string) ([]int64, error)
}
