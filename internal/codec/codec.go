// Package codec implements the token-level protocol between the Maya1
// language model and the SNAC hierarchical audio codec: extracting the
// audio-code sub-sequence from a generated continuation and demultiplexing
// fixed 7-token frames into the codec's three code levels.
package codec

// Token ids reserved by the Maya1 vocabulary for the audio-code segment.
const (
	// CodeStartID marks the beginning of the audio-code segment.
	CodeStartID int64 = 128257
	// CodeEndID is the sentinel that terminates the audio-code segment.
	CodeEndID int64 = 128258

	// CodeMinID and CodeMaxID bound the codec vocabulary range. Ids outside
	// this range inside a continuation are not audio codes.
	CodeMinID int64 = 128266
	CodeMaxID int64 = 156937

	// CodeOffset is subtracted from every raw code token before the value is
	// reduced modulo CodebookSize.
	CodeOffset int64 = 128266

	// TokensPerFrame is the fixed frame width: one codec time-step is encoded
	// as exactly seven consecutive code tokens.
	TokensPerFrame = 7

	// CodebookSize is the per-level codebook size of the SNAC codec.
	CodebookSize int64 = 4096
)

// Streams holds the demultiplexed hierarchical code streams. Per frame,
// Level1 carries one coarse value, Level2 two mid values, Level3 four fine
// values.
type Streams struct {
	Level1 []int64
	Level2 []int64
	Level3 []int64
}

// Frames returns the number of complete frames the streams represent.
func (s Streams) Frames() int {
	return len(s.Level1)
}

// Empty reports whether the streams carry no frames at all.
func (s Streams) Empty() bool {
	return len(s.Level1) == 0
}

// ExtractCodes isolates the audio-code tokens from a generated continuation.
// The continuation is truncated strictly before the first CodeEndID sentinel;
// a missing sentinel (generation hit its max-token cap) means the whole
// continuation is used. Tokens outside [CodeMinID, CodeMaxID] are dropped
// silently, preserving the order of the rest.
func ExtractCodes(continuation []int64) []int64 {
	end := len(continuation)
	for i, id := range continuation {
		if id == CodeEndID {
			end = i
			break
		}
	}

	codes := make([]int64, 0, end)
	for _, id := range continuation[:end] {
		if id >= CodeMinID && id <= CodeMaxID {
			codes = append(codes, id)
		}
	}

	return codes
}

// Demux unpacks an ordered code-token list into the three SNAC levels.
//
// The 7-slot grouping and the 1/2/4 split are fixed by the codec's
// coarse/mid/fine hierarchy: slot 0 feeds level 1, slots 1 and 4 feed
// level 2, slots 2, 3, 5 and 6 feed level 3, each decoded as
// (slot − CodeOffset) mod CodebookSize. Any deviation corrupts the
// reconstructed audio.
//
// Only complete frames are consumed; remainder tokens are discarded. A
// trailing CodeEndID is dropped before framing. Zero frames yield three
// empty streams, not an error.
func Demux(codes []int64) Streams {
	if n := len(codes); n > 0 && codes[n-1] == CodeEndID {
		codes = codes[:n-1]
	}

	frames := len(codes) / TokensPerFrame
	if frames == 0 {
		return Streams{}
	}

	s := Streams{
		Level1: make([]int64, 0, frames),
		Level2: make([]int64, 0, 2*frames),
		Level3: make([]int64, 0, 4*frames),
	}

	for i := range frames {
		slots := codes[i*TokensPerFrame : (i+1)*TokensPerFrame]
		s.Level1 = append(s.Level1, decode(slots[0]))
		s.Level2 = append(s.Level2, decode(slots[1]), decode(slots[4]))
		s.Level3 = append(s.Level3, decode(slots[2]), decode(slots[3]), decode(slots[5]), decode(slots[6]))
	}

	return s
}

func decode(raw int64) int64 {
	v := (raw - CodeOffset) % CodebookSize
	if v < 0 {
		v += CodebookSize
	}

	return v
}
