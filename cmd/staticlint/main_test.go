package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis"
)

func analyzerNames(checks []*analysis.Analyzer) []string {
	names := make([]string, 0, len(checks))
	for _, check := range checks {
		names = append(names, check.Name)
	}
	return names
}

func TestLoadConfigFirstExistingWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(second, []byte(`{"Staticcheck": ["SA4006"]}`), 0o600))

	cfg, found, err := loadConfig(first, second)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"SA4006"}, cfg.Staticcheck)
}

func TestLoadConfigMissingIsNotAnError(t *testing.T) {
	cfg, found, err := loadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, cfg.Staticcheck)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Staticcheck": `), 0o600))

	_, _, err := loadConfig(path)
	assert.Error(t, err)
}

func TestCollectAnalyzers(t *testing.T) {
	checks, unknown := collectAnalyzers(ConfigData{})
	names := analyzerNames(checks)
	assert.Contains(t, names, "readonlytx")
	assert.Contains(t, names, "nilerr")
	assert.Len(t, checks, len(alwaysOn()))
	assert.Empty(t, unknown)

	checks, unknown = collectAnalyzers(ConfigData{Staticcheck: []string{"SA4006", "SA9999999"}})
	assert.Contains(t, analyzerNames(checks), "SA4006")
	assert.Len(t, checks, len(alwaysOn())+1)
	assert.Equal(t, []string{"SA9999999"}, unknown)
}
