package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	TTS      TTSConfig     `mapstructure:"tts"`
	Server   ServerConfig  `mapstructure:"server"`
	CRM      CRMConfig     `mapstructure:"crm"`
}

type PathsConfig struct {
	ONNXManifest   string `mapstructure:"onnx_manifest"`
	TokenizerModel string `mapstructure:"tokenizer_model"`
}

type RuntimeConfig struct {
	Device         string `mapstructure:"device"`
	Threads        int    `mapstructure:"threads"`
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTVersion     string `mapstructure:"ort_version"`
}

type TTSConfig struct {
	Voice            string  `mapstructure:"voice"`
	Temperature      float64 `mapstructure:"temperature"`
	TopP             float64 `mapstructure:"top_p"`
	MaxNewTokens     int     `mapstructure:"max_new_tokens"`
	StrictDescriptor bool    `mapstructure:"strict_descriptor"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	Workers         int    `mapstructure:"workers"`
}

type CRMConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Paths: PathsConfig{
			ONNXManifest:   "models/onnx/manifest.json",
			TokenizerModel: "models/tokenizer.model",
		},
		Runtime: RuntimeConfig{
			Device:         "auto",
			Threads:        4,
			ORTLibraryPath: "",
			ORTVersion:     "",
		},
		TTS: TTSConfig{
			Voice:            "aria",
			Temperature:      0.7,
			TopP:             0.95,
			MaxNewTokens:     4096,
			StrictDescriptor: false,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    4096,
			RequestTimeout:  120,
			ShutdownTimeout: 30,
			Workers:         1,
		},
		CRM: CRMConfig{
			DatabasePath: "",
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("paths-onnx-manifest", defaults.Paths.ONNXManifest, "Path to the ONNX graph manifest")
	fs.String("paths-tokenizer-model", defaults.Paths.TokenizerModel, "Path to the SentencePiece tokenizer model")
	fs.String("runtime-device", defaults.Runtime.Device, "Compute device preference (auto|cuda|coreml|cpu)")
	fs.Int("runtime-threads", defaults.Runtime.Threads, "ONNX Runtime intra-op thread count")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (alias for --runtime-ort-library-path)")
	fs.String("runtime-ort-version", defaults.Runtime.ORTVersion, "Expected ONNX Runtime version")
	fs.String("tts-voice", defaults.TTS.Voice, "Voice preset name or free-text voice description")
	fs.Float64("tts-temperature", defaults.TTS.Temperature, "Sampling temperature for token generation")
	fs.Float64("tts-top-p", defaults.TTS.TopP, "Nucleus-sampling probability threshold")
	fs.Int("tts-max-new-tokens", defaults.TTS.MaxNewTokens, "Maximum generated tokens per synthesis call")
	fs.Bool("tts-strict-descriptor", defaults.TTS.StrictDescriptor, "Reject voice descriptors containing tag delimiter characters")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum text length in bytes for POST /tts")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request synthesis deadline in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent synthesis calls served")
	fs.String("crm-database-path", defaults.CRM.DatabasePath, "Path to the CRM SQLite database (empty disables CRM context)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("MAYATTS")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "MAYATTS_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("mayatts")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.onnx_manifest", c.Paths.ONNXManifest)
	v.SetDefault("paths.tokenizer_model", c.Paths.TokenizerModel)
	v.SetDefault("runtime.device", c.Runtime.Device)
	v.SetDefault("runtime.threads", c.Runtime.Threads)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_version", c.Runtime.ORTVersion)
	v.SetDefault("tts.voice", c.TTS.Voice)
	v.SetDefault("tts.temperature", c.TTS.Temperature)
	v.SetDefault("tts.top_p", c.TTS.TopP)
	v.SetDefault("tts.max_new_tokens", c.TTS.MaxNewTokens)
	v.SetDefault("tts.strict_descriptor", c.TTS.StrictDescriptor)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("crm.database_path", c.CRM.DatabasePath)
}

// flagKeys maps each config key to the pflag that overrides it.
var flagKeys = map[string]string{
	"log_level":                "log-level",
	"paths.onnx_manifest":      "paths-onnx-manifest",
	"paths.tokenizer_model":    "paths-tokenizer-model",
	"runtime.device":           "runtime-device",
	"runtime.threads":          "runtime-threads",
	"runtime.ort_library_path": "runtime-ort-library-path",
	"runtime.ort_version":      "runtime-ort-version",
	"tts.voice":                "tts-voice",
	"tts.temperature":          "tts-temperature",
	"tts.top_p":                "tts-top-p",
	"tts.max_new_tokens":       "tts-max-new-tokens",
	"tts.strict_descriptor":    "tts-strict-descriptor",
	"server.listen_addr":       "server-listen-addr",
	"server.max_text_bytes":    "server-max-text-bytes",
	"server.request_timeout":   "server-request-timeout",
	"server.shutdown_timeout":  "server-shutdown-timeout",
	"server.workers":           "server-workers",
	"crm.database_path":        "crm-database-path",
}

// bindFlags binds each config key directly to its flag. A bound flag only
// wins over file and env values when it was set explicitly on the command
// line; otherwise its default sits at the bottom of the precedence chain.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}

	// --ort-lib is a short alias for --runtime-ort-library-path; only an
	// explicit value participates.
	if f := fs.Lookup("ort-lib"); f != nil && f.Changed {
		v.Set("runtime.ort_library_path", f.Value.String())
	}

	return nil
}
