package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configpkg "github.com/minhyannv/compose-gen/pkg/config"
)

func TestReferenceFlagRejectsUnknown(t *testing.T) {
	f := newReferenceFlag(configpkg.ReferenceStatic)
	require.Error(t, f.Set("wiki"))
	assert.Equal(t, "static", f.String())
}

func TestReferenceFlagAcceptsRepoDocs(t *testing.T) {
	f := newReferenceFlag(configpkg.ReferenceStatic)
	require.NoError(t, f.Set("repo-docs"))
	assert.Equal(t, "repo-docs", f.String())
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-file\noutput_dir: file-out\nbase_url: http://file\n"), 0o644))
	t.Setenv(configpkg.ModelEnv, "from-env")
	t.Setenv(configpkg.BaseURLEnv, "")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := bindFlags(fs, configpkg.DefaultConfig())
	require.NoError(t, fs.Parse([]string{"--config", path, "--output-dir", "flag-out", "--env-in-file", "--reference", "repo-docs"}))

	cfg, err := resolveConfig(fs, f)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
	assert.Equal(t, "flag-out", cfg.OutputDir)
	assert.Equal(t, "http://file", cfg.BaseURL)
	assert.True(t, cfg.EnvInFile)
	assert.Equal(t, configpkg.ReferenceRepoDocs, cfg.Reference)
}

func TestResolveConfigMissingExplicitFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := bindFlags(fs, configpkg.DefaultConfig())
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}))

	_, err := resolveConfig(fs, f)
	require.Error(t, err)
}
