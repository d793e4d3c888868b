package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music library
	DBPath         string   `koanf:"db_path"`         // empty means the XDG data directory

	Playback  PlaybackConfig  `koanf:"playback"`
	Equalizer EqualizerConfig `koanf:"equalizer"`
	Analyser  AnalyserConfig  `koanf:"analyser"`
	Waveform  WaveformConfig  `koanf:"waveform"`
	Lyrics    LyricsConfig    `koanf:"lyrics"`
	Log       LogConfig       `koanf:"log"`
}

// PlaybackConfig holds engine and transition settings.
type PlaybackConfig struct {
	Crossfade        *bool   `koanf:"crossfade"`         // crossfade between tracks (default: true)
	CrossfadeSeconds float64 `koanf:"crossfade_seconds"` // crossfade length (0-30, default: 3)
	SampleRate       int     `koanf:"sample_rate"`       // output sample rate (default: 44100)
	BufferMs         int     `koanf:"buffer_ms"`         // output buffer (10-1000, default: 100)
	SmoothingMs      int     `koanf:"smoothing_ms"`      // gain/EQ smoothing time constant (default: 50)
	Volume           float64 `koanf:"volume"`            // initial master volume (0-2, default: 1.0)
}

// EqualizerConfig holds the initial equalizer gains in dB.
type EqualizerConfig struct {
	Bass   float64 `koanf:"bass"`
	Mid    float64 `koanf:"mid"`
	Treble float64 `koanf:"treble"`
}

// AnalyserConfig holds spectrum analyser settings.
type AnalyserConfig struct {
	FFTSize   int     `koanf:"fft_size"`  // power of two, 32-32768 (default: 256)
	Smoothing float64 `koanf:"smoothing"` // 0-1 (default: 0.8)
	MinDB     float64 `koanf:"min_db"`    // default: -100
	MaxDB     float64 `koanf:"max_db"`    // default: -30
}

// WaveformConfig holds waveform extraction settings.
type WaveformConfig struct {
	Bars int `koanf:"bars"` // default: 100
}

// LyricsConfig holds lyric lookup settings.
type LyricsConfig struct {
	Enrich   *bool  `koanf:"enrich"`    // query lrclib.net when no local lyrics (default: true)
	CacheDir string `koanf:"cache_dir"` // empty means the XDG cache directory
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // trace, debug, info, warn, error (default: info)
	File  string `koanf:"file"`  // JSON log file; empty logs to stderr
}

// Load reads the config files in order of priority (last wins). Extra paths
// are loaded after the defaults.
func Load(extra ...string) (*Config, error) {
	k := koanf.New(".")

	configPaths := append(getConfigPaths(), extra...)

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.Lyrics.CacheDir = expandPath(cfg.Lyrics.CacheDir)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/tides/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tides", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.Crossfade == nil {
		on := true
		cfg.Crossfade = &on
	}
	if cfg.CrossfadeSeconds <= 0 || cfg.CrossfadeSeconds > 30 {
		cfg.CrossfadeSeconds = 3
	}
	if cfg.SampleRate < 8000 || cfg.SampleRate > 192000 {
		cfg.SampleRate = 44100
	}
	if cfg.BufferMs < 10 || cfg.BufferMs > 1000 {
		cfg.BufferMs = 100
	}
	if cfg.SmoothingMs <= 0 || cfg.SmoothingMs > 1000 {
		cfg.SmoothingMs = 50
	}
	if cfg.Volume <= 0 || cfg.Volume > 2 {
		cfg.Volume = 1.0
	}

	return cfg
}

// CrossfadeEnabled reports whether crossfade is on after defaults.
func (c *Config) CrossfadeEnabled() bool {
	return *c.GetPlaybackConfig().Crossfade
}

// GetEqualizerConfig returns the equalizer gains clamped to ±24 dB.
func (c *Config) GetEqualizerConfig() EqualizerConfig {
	clamp := func(v float64) float64 { return max(-24, min(24, v)) }
	return EqualizerConfig{
		Bass:   clamp(c.Equalizer.Bass),
		Mid:    clamp(c.Equalizer.Mid),
		Treble: clamp(c.Equalizer.Treble),
	}
}

// GetAnalyserConfig returns the analyser configuration with defaults applied.
func (c *Config) GetAnalyserConfig() AnalyserConfig {
	cfg := c.Analyser

	if cfg.FFTSize < 32 || cfg.FFTSize > 32768 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		cfg.FFTSize = 256
	}
	if cfg.Smoothing <= 0 || cfg.Smoothing >= 1 {
		cfg.Smoothing = 0.8
	}
	if cfg.MinDB == 0 {
		cfg.MinDB = -100
	}
	if cfg.MaxDB == 0 {
		cfg.MaxDB = -30
	}
	if cfg.MinDB >= cfg.MaxDB {
		cfg.MinDB, cfg.MaxDB = -100, -30
	}

	return cfg
}

// GetWaveformConfig returns the waveform configuration with defaults applied.
func (c *Config) GetWaveformConfig() WaveformConfig {
	cfg := c.Waveform
	if cfg.Bars <= 0 || cfg.Bars > 10000 {
		cfg.Bars = 100
	}
	return cfg
}

// EnrichEnabled reports whether online lyric lookup is on (default: true).
func (c *Config) EnrichEnabled() bool {
	return c.Lyrics.Enrich == nil || *c.Lyrics.Enrich
}

// GetLogLevel returns the log level, defaulting to info.
func (c *Config) GetLogLevel() string {
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
		return c.Log.Level
	}
	return "info"
}
