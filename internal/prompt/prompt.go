// Package prompt builds the structured Maya1 generation prompt: control
// tokens framing a voice-descriptor tag and the utterance text.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/go-maya-tts/internal/codec"
)

// Control-token ids of the Maya1 vocabulary surrounding the prompt body.
const (
	BOSID     int64 = 128000 // begin-of-sequence
	TextEOTID int64 = 128009 // end-of-text
	SOHID     int64 = 128259 // start-of-header
	EOHID     int64 = 128260 // end-of-header
	SOAID     int64 = 128261 // start-of-audio
)

// ErrDescriptorSyntax is returned in strict mode when a descriptor or text
// contains characters that would break the inline tag syntax.
var ErrDescriptorSyntax = errors.New("descriptor contains tag delimiter characters")

// Encoder tokenizes plain prompt text into vocabulary ids. Control tokens
// are spliced in numerically and never pass through the encoder.
type Encoder interface {
	Encode(text string) ([]int64, error)
}

// Framer assembles prompt token sequences for the generator.
//
// Strict enables the guarded validation path: descriptors containing `"` or
// `>` are rejected instead of being embedded verbatim. It is off by default
// to match the original trust model, where inputs are embedded unescaped and
// malformed tags are whatever the tokenizer makes of them.
type Framer struct {
	Strict bool
}

// Body returns the textual prompt body: the descriptor tag inlined verbatim,
// one literal space, then the utterance text. No escaping is performed.
func (f Framer) Body(descriptor, text string) string {
	return `<description="` + descriptor + `"> ` + text
}

// Frame builds the full prompt token sequence:
//
//	[soh][bos] <description="descriptor"> text [eot][eoh][soa][sos]
//
// The body is tokenized by enc; the surrounding control tokens are appended
// as raw ids. Tokenization errors propagate unchanged.
func (f Framer) Frame(enc Encoder, descriptor, text string) ([]int64, error) {
	if f.Strict {
		if strings.ContainsAny(descriptor, `">`) {
			return nil, fmt.Errorf("%w: %q", ErrDescriptorSyntax, descriptor)
		}
	}

	body, err := enc.Encode(f.Body(descriptor, text))
	if err != nil {
		return nil, fmt.Errorf("tokenize prompt body: %w", err)
	}

	ids := make([]int64, 0, len(body)+6)
	ids = append(ids, SOHID, BOSID)
	ids = append(ids, body...)
	ids = append(ids, TextEOTID, EOHID, SOAID, codec.CodeStartID)

	return ids, nil
}
