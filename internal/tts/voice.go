package tts

import (
	"fmt"
	"sort"
	"strings"
)

// VoicePreset pairs a short voice name with a full natural-language voice
// descriptor for the prompt header.
type VoicePreset struct {
	Name        string
	Descriptor  string
	Description string
}

var voicePresets = map[string]VoicePreset{
	"aria": {
		Name:        "aria",
		Descriptor:  "Female voice in her 30s with an American accent, warm and professional tone, clear articulation",
		Description: "Warm professional female voice",
	},
	"aria_excited": {
		Name:        "aria_excited",
		Descriptor:  "Female voice in her 30s with an American accent, energetic and enthusiastic tone, expressive delivery",
		Description: "Energetic female voice",
	},
	"male_professional": {
		Name:        "male_professional",
		Descriptor:  "Male voice in his 40s with an American accent, calm and authoritative tone, measured pace",
		Description: "Calm authoritative male voice",
	},
	"male_friendly": {
		Name:        "male_friendly",
		Descriptor:  "Male voice in his 30s with an American accent, friendly and conversational tone, relaxed delivery",
		Description: "Friendly conversational male voice",
	},
}

// ResolveVoice maps a preset name to its descriptor. Unknown names pass
// through unchanged so callers can supply a raw descriptor directly.
func ResolveVoice(voice string) string {
	if p, ok := voicePresets[strings.ToLower(strings.TrimSpace(voice))]; ok {
		return p.Descriptor
	}

	return voice
}

// ListVoicePresets returns the presets sorted by name.
func ListVoicePresets() []VoicePreset {
	out := make([]VoicePreset, 0, len(voicePresets))
	for _, p := range voicePresets {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// LookupVoicePreset returns the named preset or an error listing the known
// names.
func LookupVoicePreset(name string) (VoicePreset, error) {
	p, ok := voicePresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(voicePresets))
		for n := range voicePresets {
			names = append(names, n)
		}
		sort.Strings(names)

		return VoicePreset{}, fmt.Errorf("unknown voice preset %q (known: %s)", name, strings.Join(names, ", "))
	}

	return p, nil
}
