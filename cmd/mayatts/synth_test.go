package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-maya-tts/internal/audio"
	"github.com/example/go-maya-tts/internal/testutil"
)

func TestReadSynthText(t *testing.T) {
	t.Run("uses flag text", func(t *testing.T) {
		got, err := readSynthText("hello", strings.NewReader("ignored"))
		if err != nil {
			t.Fatalf("readSynthText returned error: %v", err)
		}
		if got != "hello" {
			t.Fatalf("expected hello, got %q", got)
		}
	})

	t.Run("falls back to stdin", func(t *testing.T) {
		got, err := readSynthText("", strings.NewReader(" from stdin \n"))
		if err != nil {
			t.Fatalf("readSynthText returned error: %v", err)
		}
		if got != "from stdin" {
			t.Fatalf("expected trimmed stdin text, got %q", got)
		}
	})

	t.Run("fails when both empty", func(t *testing.T) {
		_, err := readSynthText("", strings.NewReader("   \n\t"))
		if err == nil {
			t.Fatal("expected error for empty input")
		}
	})
}

func TestWriteSynthOutput(t *testing.T) {
	t.Run("writes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.wav")
		if err := writeSynthOutput(path, []byte("wav-bytes"), nil); err != nil {
			t.Fatalf("writeSynthOutput returned error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		if string(data) != "wav-bytes" {
			t.Fatalf("unexpected file content %q", data)
		}
	})

	t.Run("dash writes stdout", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeSynthOutput("-", []byte("wav-bytes"), &buf); err != nil {
			t.Fatalf("writeSynthOutput returned error: %v", err)
		}
		if buf.String() != "wav-bytes" {
			t.Fatalf("unexpected stdout content %q", buf.String())
		}
	})

	t.Run("dash with nil stdout fails", func(t *testing.T) {
		if err := writeSynthOutput("-", []byte("x"), nil); err == nil {
			t.Fatal("expected error for nil stdout")
		}
	})
}

func TestApplyDSPToWAV(t *testing.T) {
	samples := make([]float32, 2400)
	for i := range samples {
		samples[i] = 0.25
	}

	wavData, err := audio.EncodeWAV(samples)
	if err != nil {
		t.Fatalf("encode input WAV: %v", err)
	}

	t.Run("normalize raises the peak", func(t *testing.T) {
		out, err := applyDSPToWAV(wavData, synthDSPOptions{Normalize: true})
		if err != nil {
			t.Fatalf("applyDSPToWAV returned error: %v", err)
		}
		testutil.AssertValidWAV(t, out)

		processed, err := audio.DecodeWAV(out)
		if err != nil {
			t.Fatalf("decode output: %v", err)
		}

		var peak float32
		for _, s := range processed {
			if s > peak {
				peak = s
			}
		}
		if peak < 0.9 {
			t.Errorf("peak after normalize = %f, want near 1.0", peak)
		}
	})

	t.Run("fades keep WAV valid", func(t *testing.T) {
		out, err := applyDSPToWAV(wavData, synthDSPOptions{FadeInMS: 10, FadeOutMS: 10})
		if err != nil {
			t.Fatalf("applyDSPToWAV returned error: %v", err)
		}
		testutil.AssertValidWAV(t, out)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		if _, err := applyDSPToWAV([]byte("not a wav"), synthDSPOptions{Normalize: true}); err == nil {
			t.Fatal("expected error for invalid WAV input")
		}
	})
}
