package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harukimoto/driftwatch/internal/model"
)

func writeTargets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}
	return path
}

const validTargets = `
targets:
  - name: Example API Changelog
    url: https://example.com/changelog
    impact: High
    normalize: html
  - name: Example News (RSS)
    url: https://example.com/news/rss.xml
    impact: Medium
    normalize: rss_min
  - name: Example OpenAPI Spec
    url: https://example.com/openapi.documented.yml
    impact: Breaking
    normalize: openapi_c14n_v1
  - name: Paused Source
    url: https://example.com/paused
    impact: Low
    disabled: true
`

func TestLoad_ResolvesKindsAndCategories(t *testing.T) {
	path := writeTargets(t, validTargets)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Targets) != 4 {
		t.Fatalf("expected 4 targets, got %d", len(cfg.Targets))
	}

	want := []struct {
		kind     model.DocumentKind
		category model.SourceCategory
		disabled bool
	}{
		{model.KindHTML, model.CategoryChangelog, false},
		{model.KindFeed, model.CategoryNews, false},
		{model.KindOpenAPI, model.CategorySpec, false},
		{model.KindOpaque, model.CategoryGeneric, true},
	}
	for i, w := range want {
		got := cfg.Targets[i]
		if got.Kind != w.kind {
			t.Errorf("target %d: kind = %q, want %q", i, got.Kind, w.kind)
		}
		if got.Category != w.category {
			t.Errorf("target %d: category = %q, want %q", i, got.Category, w.category)
		}
		if got.Disabled != w.disabled {
			t.Errorf("target %d: disabled = %v, want %v", i, got.Disabled, w.disabled)
		}
	}
}

func TestLoad_UnknownKindIsLoadError(t *testing.T) {
	path := writeTargets(t, `
targets:
  - name: Bad
    url: https://example.com
    impact: High
    normalize: protobuf
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown normalizer kind")
	} else if !strings.Contains(err.Error(), "unknown normalizer kind") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_UnknownImpactIsLoadError(t *testing.T) {
	path := writeTargets(t, `
targets:
  - name: Bad
    url: https://example.com
    impact: Catastrophic
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown impact")
	}
}

func TestLoad_DuplicateNameIsLoadError(t *testing.T) {
	path := writeTargets(t, `
targets:
  - name: Twice
    url: https://example.com/a
    impact: High
  - name: Twice
    url: https://example.com/b
    impact: High
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate target name")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DRIFTWATCH_STATE_DIR", "/var/lib/driftwatch")
	t.Setenv("DRIFTWATCH_FETCH_TIMEOUT", "45")

	path := writeTargets(t, validTargets)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StateDir != "/var/lib/driftwatch" {
		t.Errorf("StateDir = %q, want env override", cfg.StateDir)
	}
	if cfg.Fetch.Timeout != 45*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 45s", cfg.Fetch.Timeout)
	}
}

func TestResolveKind_EmptyIsOpaque(t *testing.T) {
	kind, err := ResolveKind("")
	if err != nil {
		t.Fatalf("ResolveKind: %v", err)
	}
	if kind != model.KindOpaque {
		t.Fatalf("empty kind resolved to %q, want opaque", kind)
	}
}

func TestDeriveCategory_SpecWinsOverName(t *testing.T) {
	// A YAML spec whose name mentions "changelog" is still a spec source.
	cat := deriveCategory("Spec changelog", "https://example.com/api.yaml", model.KindOpenAPI)
	if cat != model.CategorySpec {
		t.Fatalf("category = %q, want spec", cat)
	}
}
