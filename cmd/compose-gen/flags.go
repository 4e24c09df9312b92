package main

import (
	"strings"

	"github.com/spf13/pflag"

	configpkg "github.com/minhyannv/compose-gen/pkg/config"
)

// referenceFlag restricts --reference to the known sources.
type referenceFlag struct {
	value configpkg.ReferenceSource
}

var _ pflag.Value = (*referenceFlag)(nil)

func newReferenceFlag(def configpkg.ReferenceSource) *referenceFlag {
	return &referenceFlag{value: def}
}

func (f *referenceFlag) String() string {
	if f == nil {
		return ""
	}
	return string(f.value)
}

func (f *referenceFlag) Set(value string) error {
	ref, err := configpkg.ParseReference(value)
	if err != nil {
		return err
	}
	f.value = ref
	return nil
}

func (f *referenceFlag) Type() string {
	return strings.Join([]string{string(configpkg.ReferenceStatic), string(configpkg.ReferenceRepoDocs)}, "|")
}

// cliFlags are the raw command-line values before they are merged into
// the runtime config.
type cliFlags struct {
	reference  *referenceFlag
	envInFile  bool
	configPath string
	outputDir  string
	model      string
	verbose    bool
}

func bindFlags(fs *pflag.FlagSet, defaults configpkg.Config) *cliFlags {
	f := &cliFlags{reference: newReferenceFlag(defaults.Reference)}
	fs.Var(f.reference, "reference", "Reference source to use (static or repo-docs)")
	fs.BoolVar(&f.envInFile, "env-in-file", false, "Store environment variables in a separate file")
	fs.StringVar(&f.configPath, "config", configpkg.DefaultConfigFile, "Optional YAML settings file")
	fs.StringVar(&f.outputDir, "output-dir", defaults.OutputDir, "Directory for generated files")
	fs.StringVar(&f.model, "model", defaults.Model, "Chat model identifier (overrides OPENAI_MODEL)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose logging to stderr")
	return f
}

// resolveConfig merges defaults, the settings file, the environment, and
// explicitly set flags, in increasing precedence.
func resolveConfig(fs *pflag.FlagSet, f *cliFlags) (configpkg.Config, error) {
	cfg, err := configpkg.LoadFile(f.configPath, fs.Changed("config"), configpkg.DefaultConfig())
	if err != nil {
		return configpkg.Config{}, err
	}
	cfg = configpkg.ApplyEnv(cfg)

	cfg.Reference = f.reference.value
	cfg.EnvInFile = f.envInFile
	cfg.Verbose = f.verbose
	if fs.Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if fs.Changed("model") {
		cfg.Model = f.model
	}
	return configpkg.Normalize(cfg), nil
}
