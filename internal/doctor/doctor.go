// Package doctor provides environment preflight checks for mayatts.
package doctor

import (
	"fmt"
	"io"
	"os"

	"github.com/example/go-maya-tts/internal/config"
	"github.com/example/go-maya-tts/internal/model"
	"github.com/example/go-maya-tts/internal/onnx"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// Runtime settings used to locate the ONNX Runtime library.
	Runtime config.RuntimeConfig
	// ManifestPath is the ONNX session manifest to validate.
	ManifestPath string
	// TokenizerModelPath is the SentencePiece model file to verify on disk.
	TokenizerModelPath string
	// CRMDatabasePath is the contact store file; empty skips the check.
	CRMDatabasePath string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ONNX Runtime library --------------------------------------------
	info, err := onnx.DetectRuntime(cfg.Runtime)
	if err != nil {
		res.fail(fmt.Sprintf("onnx runtime library: %v", err))
		fmt.Fprintf(w, "%s onnx runtime library: not found (%v)\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s onnx runtime library: %s (version %s)\n", PassMark, info.LibraryPath, info.Version)
	}

	// ---- session manifest -------------------------------------------------
	if cfg.ManifestPath == "" {
		res.fail("onnx manifest: no path configured")
		fmt.Fprintf(w, "%s onnx manifest: no path configured\n", FailMark)
	} else if sm, err := onnx.NewSessionManager(cfg.ManifestPath); err != nil {
		res.fail(fmt.Sprintf("onnx manifest %q: %v", cfg.ManifestPath, err))
		fmt.Fprintf(w, "%s onnx manifest %s: %v\n", FailMark, cfg.ManifestPath, err)
	} else {
		fmt.Fprintf(w, "%s onnx manifest: %s\n", PassMark, cfg.ManifestPath)
		checkGraphs(sm, &res, w)
	}

	// ---- tokenizer model --------------------------------------------------
	if cfg.TokenizerModelPath == "" {
		res.fail("tokenizer model: no path configured")
		fmt.Fprintf(w, "%s tokenizer model: no path configured\n", FailMark)
	} else if _, err := os.Stat(cfg.TokenizerModelPath); err != nil {
		res.fail(fmt.Sprintf("tokenizer model %q: %v", cfg.TokenizerModelPath, err))
		fmt.Fprintf(w, "%s tokenizer model %s: not found\n", FailMark, cfg.TokenizerModelPath)
	} else {
		fmt.Fprintf(w, "%s tokenizer model: %s\n", PassMark, cfg.TokenizerModelPath)
	}

	// ---- CRM database -----------------------------------------------------
	if cfg.CRMDatabasePath == "" {
		fmt.Fprintf(w, "%s crm database: skipped\n", PassMark)
	} else if _, err := os.Stat(cfg.CRMDatabasePath); err != nil {
		// A missing file is created on first open; only report access errors.
		if os.IsNotExist(err) {
			fmt.Fprintf(w, "%s crm database: %s (will be created)\n", PassMark, cfg.CRMDatabasePath)
		} else {
			res.fail(fmt.Sprintf("crm database %q: %v", cfg.CRMDatabasePath, err))
			fmt.Fprintf(w, "%s crm database %s: %v\n", FailMark, cfg.CRMDatabasePath, err)
		}
	} else {
		fmt.Fprintf(w, "%s crm database: %s\n", PassMark, cfg.CRMDatabasePath)
	}

	return res
}

// checkGraphs verifies the manifest declares the graphs the pipeline loads
// and that every declared tensor has a usable dtype and shape.
func checkGraphs(sm *onnx.SessionManager, res *Result, w io.Writer) {
	found := make(map[string]bool)

	for _, sess := range sm.Sessions() {
		found[sess.Name] = true

		nodes := append(append([]onnx.NodeInfo(nil), sess.Inputs...), sess.Outputs...)
		for _, n := range nodes {
			if _, err := onnx.NewZeroTensor(n.DType, n.Shape); err != nil {
				res.fail(fmt.Sprintf("graph %q tensor %q: %v", sess.Name, n.Name, err))
				fmt.Fprintf(w, "%s graph %s tensor %s: %v\n", FailMark, sess.Name, n.Name, err)
			}
		}
	}

	for _, name := range []string{model.GeneratorGraph, model.DecoderGraph} {
		if found[name] {
			fmt.Fprintf(w, "%s graph %s: declared\n", PassMark, name)
		} else {
			res.fail(fmt.Sprintf("graph %q missing from manifest", name))
			fmt.Fprintf(w, "%s graph %s: missing from manifest\n", FailMark, name)
		}
	}
}
