package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harukimoto/driftwatch/internal/model"
)

// Config holds all driftwatch configuration: the immutable target list from
// the YAML file plus ambient settings from environment variables. Constructed
// once at process start and passed by reference into the pipeline.
type Config struct {
	Targets    []model.Target
	StateDir   string
	ReportDir  string
	Fetch      FetchConfig
	Summarizer SummarizerConfig
	Logging    LoggingConfig
}

// FetchConfig holds HTTP retrieval settings.
type FetchConfig struct {
	Timeout time.Duration
}

// SummarizerConfig holds settings for the best-effort summarization call.
// An empty APIKey disables summarization entirely.
type SummarizerConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string // "debug", "info", "warn", "error"
	JSON  bool
}

// targetFile is the YAML schema of the targets file.
type targetFile struct {
	Targets []fileTarget `yaml:"targets"`
}

type fileTarget struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Impact    string `yaml:"impact"`
	Normalize string `yaml:"normalize"`
	Disabled  bool   `yaml:"disabled"`
}

// Load reads the targets file at path and merges environment settings.
// Unknown normalizer kinds and impact levels are load-time errors, not
// runtime fallbacks.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var tf targetFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(tf.Targets) == 0 {
		return nil, fmt.Errorf("config: %s defines no targets", path)
	}

	targets := make([]model.Target, 0, len(tf.Targets))
	seen := make(map[string]bool, len(tf.Targets))
	for i, ft := range tf.Targets {
		t, err := resolveTarget(ft)
		if err != nil {
			return nil, fmt.Errorf("config: target %d: %w", i, err)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("config: duplicate target name %q", t.Name)
		}
		seen[t.Name] = true
		targets = append(targets, t)
	}

	return &Config{
		Targets:   targets,
		StateDir:  getenv("DRIFTWATCH_STATE_DIR", "state"),
		ReportDir: getenv("DRIFTWATCH_REPORT_DIR", "reports"),
		Fetch: FetchConfig{
			Timeout: getenvDuration("DRIFTWATCH_FETCH_TIMEOUT", 30*time.Second),
		},
		Summarizer: SummarizerConfig{
			APIKey:   getenv("DRIFTWATCH_SUMMARIZER_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Model:    getenv("DRIFTWATCH_SUMMARIZER_MODEL", "gpt-4.1-mini"),
			Endpoint: getenv("DRIFTWATCH_SUMMARIZER_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
			Timeout:  getenvDuration("DRIFTWATCH_SUMMARIZER_TIMEOUT", 20*time.Second),
		},
		Logging: LoggingConfig{
			Level: getenv("DRIFTWATCH_LOG_LEVEL", "info"),
			JSON:  getenvBool("DRIFTWATCH_LOG_JSON", false),
		},
	}, nil
}

// resolveTarget validates one file entry and resolves its kind and category.
func resolveTarget(ft fileTarget) (model.Target, error) {
	name := strings.TrimSpace(ft.Name)
	if name == "" {
		return model.Target{}, fmt.Errorf("name is required")
	}
	if strings.TrimSpace(ft.URL) == "" {
		return model.Target{}, fmt.Errorf("target %q: url is required", name)
	}
	impact, err := model.ParseImpact(ft.Impact)
	if err != nil {
		return model.Target{}, fmt.Errorf("target %q: %w", name, err)
	}
	kind, err := ResolveKind(ft.Normalize)
	if err != nil {
		return model.Target{}, fmt.Errorf("target %q: %w", name, err)
	}
	return model.Target{
		Name:          name,
		URL:           ft.URL,
		DefaultImpact: impact,
		Kind:          kind,
		Category:      deriveCategory(name, ft.URL, kind),
		Disabled:      ft.Disabled,
	}, nil
}

// ResolveKind maps a configuration string to a DocumentKind. The empty string
// is the explicit opaque-text variant. Historical kind names from earlier
// target lists are accepted as aliases.
func ResolveKind(s string) (model.DocumentKind, error) {
	switch strings.TrimSpace(s) {
	case "":
		return model.KindOpaque, nil
	case "feed", "rss_min":
		return model.KindFeed, nil
	case "openapi", "openapi_c14n_v1":
		return model.KindOpenAPI, nil
	case "html":
		return model.KindHTML, nil
	case "opaque", "text":
		return model.KindOpaque, nil
	}
	return "", fmt.Errorf("unknown normalizer kind %q (want feed, openapi, html or opaque)", s)
}

// deriveCategory picks the classifier branch for a target. Spec sources win
// over name heuristics: a YAML spec named "changelog" is still a spec.
func deriveCategory(name, url string, kind model.DocumentKind) model.SourceCategory {
	n := strings.ToLower(name)
	u := strings.ToLower(url)
	switch {
	case kind == model.KindOpenAPI, strings.Contains(n, "openapi"),
		strings.HasSuffix(u, ".yml"), strings.HasSuffix(u, ".yaml"):
		return model.CategorySpec
	case strings.Contains(n, "changelog"), strings.Contains(n, "release notes"):
		return model.CategoryChangelog
	case strings.Contains(n, "news"):
		return model.CategoryNews
	}
	return model.CategoryGeneric
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvDuration reads a duration env var. Accepts Go duration syntax
// ("45s") or a bare number of seconds.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
