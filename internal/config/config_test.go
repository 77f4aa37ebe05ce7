package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.ONNXManifest != "models/onnx/manifest.json" {
		t.Errorf("ONNXManifest = %q; want %q", cfg.Paths.ONNXManifest, "models/onnx/manifest.json")
	}

	if cfg.Paths.TokenizerModel != "models/tokenizer.model" {
		t.Errorf("TokenizerModel = %q; want %q", cfg.Paths.TokenizerModel, "models/tokenizer.model")
	}

	if cfg.Runtime.Device != "auto" {
		t.Errorf("Runtime.Device = %q; want %q", cfg.Runtime.Device, "auto")
	}

	if cfg.Runtime.Threads != 4 {
		t.Errorf("Runtime.Threads = %d; want 4", cfg.Runtime.Threads)
	}

	if cfg.TTS.Voice != "aria" {
		t.Errorf("TTS.Voice = %q; want %q", cfg.TTS.Voice, "aria")
	}

	if cfg.TTS.Temperature != 0.7 {
		t.Errorf("TTS.Temperature = %v; want 0.7", cfg.TTS.Temperature)
	}

	if cfg.TTS.TopP != 0.95 {
		t.Errorf("TTS.TopP = %v; want 0.95", cfg.TTS.TopP)
	}

	if cfg.TTS.MaxNewTokens != 4096 {
		t.Errorf("TTS.MaxNewTokens = %d; want 4096", cfg.TTS.MaxNewTokens)
	}

	if cfg.TTS.StrictDescriptor {
		t.Error("TTS.StrictDescriptor = true; want false")
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":8080")
	}

	if cfg.Server.MaxTextBytes != 4096 {
		t.Errorf("Server.MaxTextBytes = %d; want 4096", cfg.Server.MaxTextBytes)
	}

	if cfg.Server.RequestTimeout != 120 {
		t.Errorf("Server.RequestTimeout = %d; want 120", cfg.Server.RequestTimeout)
	}

	if cfg.CRM.DatabasePath != "" {
		t.Errorf("CRM.DatabasePath = %q; want empty", cfg.CRM.DatabasePath)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	// Spot-check a few flags are registered with correct defaults.
	checks := []struct {
		flag string
		want string
	}{
		{"paths-onnx-manifest", "models/onnx/manifest.json"},
		{"paths-tokenizer-model", "models/tokenizer.model"},
		{"server-listen-addr", ":8080"},
		{"tts-voice", "aria"},
		{"tts-max-new-tokens", "4096"},
		{"log-level", "info"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Paths.ONNXManifest != defaults.Paths.ONNXManifest {
		t.Errorf("ONNXManifest = %q; want %q", cfg.Paths.ONNXManifest, defaults.Paths.ONNXManifest)
	}

	if cfg.TTS.Voice != defaults.TTS.Voice {
		t.Errorf("TTS.Voice = %q; want %q", cfg.TTS.Voice, defaults.TTS.Voice)
	}

	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, defaults.LogLevel)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--tts-voice=male_professional",
		"--tts-max-new-tokens=512",
		"--log-level=debug",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TTS.Voice != "male_professional" {
		t.Errorf("TTS.Voice = %q; want %q", cfg.TTS.Voice, "male_professional")
	}

	if cfg.TTS.MaxNewTokens != 512 {
		t.Errorf("TTS.MaxNewTokens = %d; want 512", cfg.TTS.MaxNewTokens)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MAYATTS_LOG_LEVEL", "warn")
	t.Setenv("MAYATTS_SERVER_LISTEN_ADDR", ":9999")

	defaults := DefaultConfig()

	cfg, err := Load(LoadOptions{
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.Server.ListenAddr != ":9999" {
		t.Errorf("Server.ListenAddr = %q; want %q", cfg.Server.ListenAddr, ":9999")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "mayatts.yaml")

	content := `
log_level: error
tts:
  voice: "Male, warm baritone"
  temperature: 0.5
crm:
  database_path: /data/crm.db
`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}

	if cfg.TTS.Voice != "Male, warm baritone" {
		t.Errorf("TTS.Voice = %q; want %q", cfg.TTS.Voice, "Male, warm baritone")
	}

	if cfg.TTS.Temperature != 0.5 {
		t.Errorf("TTS.Temperature = %v; want 0.5", cfg.TTS.Temperature)
	}

	if cfg.CRM.DatabasePath != "/data/crm.db" {
		t.Errorf("CRM.DatabasePath = %q; want %q", cfg.CRM.DatabasePath, "/data/crm.db")
	}
}

func TestLoad_FlagBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "mayatts.yaml")

	content := `
log_level: error
tts:
  voice: "Male, warm baritone"
`
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	if err := fs.Parse([]string{"--log-level=debug"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:        &fakeBinder{fs: fs},
		ConfigFile: cfgFile,
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// An explicit flag wins over the file.
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "debug")
	}

	// An unset flag's default does not shadow the file value.
	if cfg.TTS.Voice != "Male, warm baritone" {
		t.Errorf("TTS.Voice = %q; want %q", cfg.TTS.Voice, "Male, warm baritone")
	}
}

func TestLoad_ORTLibFlagAlias(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	if err := fs.Parse([]string{"--ort-lib=/opt/ort/libonnxruntime.so"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:      &fakeBinder{fs: fs},
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Runtime.ORTLibraryPath != "/opt/ort/libonnxruntime.so" {
		t.Errorf("Runtime.ORTLibraryPath = %q; want %q",
			cfg.Runtime.ORTLibraryPath, "/opt/ort/libonnxruntime.so")
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/mayatts.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
