package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const Version = "0.1.0"

type Config struct {
	Root            string `toml:"root"`
	DBPath          string `toml:"db_path"`
	TrackersDir     string `toml:"trackers_dir"`
	ApplicationsDir string `toml:"applications_dir"`
	CaptureDir      string `toml:"capture_dir"`
	ServerName      string `toml:"server_name"`
	LogLevel        string `toml:"log_level"`

	Scrape ScrapeConfig `toml:"scrape"`
	Tailor TailorConfig `toml:"tailor"`

	// Resolved at runtime (not in TOML).
	BaseDir string `toml:"-"`
}

type ScrapeConfig struct {
	Terms         []string `toml:"terms"`
	Location      string   `toml:"location"`
	Sites         []string `toml:"sites"`
	ResultsWanted int      `toml:"results_wanted"`
	HoursOld      int      `toml:"hours_old"`
}

type TailorConfig struct {
	ResumeTemplate string `toml:"resume_template"`
	FullResume     string `toml:"full_resume"`
	PdflatexCmd    string `toml:"pdflatex_cmd"`
}

// Load reads the config file at path and resolves defaults, environment
// overrides, and relative paths. An empty path skips the file and loads
// defaults only, so the zero-config case works.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		cfg.BaseDir = filepath.Dir(path)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		cfg.BaseDir = wd
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	resolvePaths(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "capture", "jobs.db")
	}
	if cfg.TrackersDir == "" {
		cfg.TrackersDir = "trackers"
	}
	if cfg.ApplicationsDir == "" {
		cfg.ApplicationsDir = "applications"
	}
	if cfg.CaptureDir == "" {
		cfg.CaptureDir = filepath.Join("data", "capture")
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "jobworkflow"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if len(cfg.Scrape.Terms) == 0 {
		cfg.Scrape.Terms = []string{"ai engineer", "backend engineer", "machine learning"}
	}
	if cfg.Scrape.Location == "" {
		cfg.Scrape.Location = "Ontario, Canada"
	}
	if len(cfg.Scrape.Sites) == 0 {
		cfg.Scrape.Sites = []string{"linkedin"}
	}
	if cfg.Scrape.ResultsWanted == 0 {
		cfg.Scrape.ResultsWanted = 20
	}
	if cfg.Scrape.HoursOld == 0 {
		cfg.Scrape.HoursOld = 2
	}
	if cfg.Tailor.ResumeTemplate == "" {
		cfg.Tailor.ResumeTemplate = filepath.Join("templates", "resume.tex")
	}
	if cfg.Tailor.FullResume == "" {
		cfg.Tailor.FullResume = filepath.Join("templates", "full_resume.md")
	}
	if cfg.Tailor.PdflatexCmd == "" {
		cfg.Tailor.PdflatexCmd = "pdflatex -interaction=nonstopmode -halt-on-error"
	}
}

// applyEnv merges environment overrides. Priority (highest → lowest):
// env > config file > defaults.
func applyEnv(cfg *Config) {
	if v := os.Getenv("JOBWORKFLOW_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("JOBWORKFLOW_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JOBWORKFLOW_SERVER_NAME"); v != "" {
		cfg.ServerName = v
	}
}

func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log_level: %q", cfg.LogLevel)
	}
	if cfg.Scrape.ResultsWanted < 1 || cfg.Scrape.ResultsWanted > 200 {
		return fmt.Errorf("scrape.results_wanted must be in [1,200], got %d", cfg.Scrape.ResultsWanted)
	}
	if cfg.Scrape.HoursOld < 1 || cfg.Scrape.HoursOld > 168 {
		return fmt.Errorf("scrape.hours_old must be in [1,168], got %d", cfg.Scrape.HoursOld)
	}
	for i, term := range cfg.Scrape.Terms {
		if term == "" {
			return fmt.Errorf("scrape.terms[%d] is empty", i)
		}
	}
	if cfg.Tailor.PdflatexCmd == "" {
		return fmt.Errorf("tailor.pdflatex_cmd is required")
	}
	return nil
}

// resolvePaths anchors every relative path at the workflow root. The
// root itself resolves against the config file's directory, never the
// process CWD, so trackers land in the same place no matter where the
// binary runs.
func resolvePaths(cfg *Config) {
	cfg.Root = absPath(cfg.BaseDir, cfg.Root)
	cfg.DBPath = absPath(cfg.Root, cfg.DBPath)
	cfg.TrackersDir = absPath(cfg.Root, cfg.TrackersDir)
	cfg.ApplicationsDir = absPath(cfg.Root, cfg.ApplicationsDir)
	cfg.CaptureDir = absPath(cfg.Root, cfg.CaptureDir)
	cfg.Tailor.ResumeTemplate = absPath(cfg.Root, cfg.Tailor.ResumeTemplate)
	cfg.Tailor.FullResume = absPath(cfg.Root, cfg.Tailor.FullResume)
}

func absPath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (cfg *Config) SlogLevel() slog.Level {
	switch cfg.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
