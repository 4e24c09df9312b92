// Package reference loads the documentation used to ground the system prompt.
package reference

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minhyannv/compose-gen/pkg/config"
	loggerpkg "github.com/minhyannv/compose-gen/pkg/logger"
)

const (
	staticEnvVarsFile  = "env-variables.md"
	staticComposeFile  = "sample-docker-compose.yaml"
	repoDocsEnvVarsRel = "docs/getting-started/env-configuration.md"
	repoDocsComposeRel = "docs/getting-started/installation/docker-compose.md"
)

// Bundle is the reference text injected into the system prompt.
type Bundle struct {
	EnvVars       string
	SampleCompose string
	// Origin is the directory the bundle was read from.
	Origin string
}

// Loader reads a Bundle from the static reference directory, falling back to
// a checkout of the upstream docs.
type Loader struct {
	StaticDir   string
	RepoDocsDir string
	Source      config.ReferenceSource
	Logger      loggerpkg.Logger
	Verbose     bool
}

// Load never fails: missing files leave the corresponding field empty.
// The static pair wins whenever both of its files exist, whatever Source says.
func (l Loader) Load() Bundle {
	loggerpkg.Debug(l.Verbose, l.Logger, "loading reference", map[string]any{
		"source":        l.Source,
		"static_dir":    l.StaticDir,
		"repo_docs_dir": l.RepoDocsDir,
	})

	envPath := filepath.Join(l.StaticDir, staticEnvVarsFile)
	composePath := filepath.Join(l.StaticDir, staticComposeFile)
	if fileExists(envPath) && fileExists(composePath) {
		return Bundle{
			EnvVars:       l.read(envPath),
			SampleCompose: l.read(composePath),
			Origin:        l.StaticDir,
		}
	}

	return Bundle{
		EnvVars:       l.read(filepath.Join(l.RepoDocsDir, repoDocsEnvVarsRel)),
		SampleCompose: l.read(filepath.Join(l.RepoDocsDir, repoDocsComposeRel)),
		Origin:        l.RepoDocsDir,
	}
}

func (l Loader) read(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		loggerpkg.Debug(l.Verbose, l.Logger, "reference file unavailable", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return ""
	}
	text := string(content)
	loggerpkg.Debug(l.Verbose, l.Logger, "reference file loaded", map[string]any{
		"path":  path,
		"bytes": len(text),
		"title": FrontMatterTitle(text),
	})
	return text
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// docFrontMatter mirrors the YAML header of the upstream docs pages.
type docFrontMatter struct {
	Title string `yaml:"title"`
}

// FrontMatterTitle returns the title from a leading YAML front matter block,
// or "" when the text has none.
func FrontMatterTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return ""
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "---" {
			continue
		}
		var fm docFrontMatter
		if err := yaml.Unmarshal([]byte(strings.Join(lines[1:i], "\n")), &fm); err != nil {
			return ""
		}
		return strings.TrimSpace(fm.Title)
	}
	return ""
}
