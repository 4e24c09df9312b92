package output

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/minhyannv/compose-gen/pkg/extract"
	loggerpkg "github.com/minhyannv/compose-gen/pkg/logger"
)

const (
	ComposeFile = "docker-compose.yaml"
	EnvFile     = ".env.generated"
)

// Writer persists generated artifacts under Dir.
type Writer struct {
	Dir     string
	Logger  loggerpkg.Logger
	Verbose bool
}

// Result reports where artifacts were written. EnvPath is empty when no env
// file was produced.
type Result struct {
	ComposePath string
	EnvPath     string
}

// Write creates Dir if needed and overwrites the compose file. The env file
// is written only when the artifacts carry one.
func (w Writer) Write(a extract.Artifacts) (Result, error) {
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if dir != "." {
		loggerpkg.Debug(w.Verbose, w.Logger, "creating output directory", map[string]any{"dir": dir})
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, errors.Wrapf(err, "create output directory %s", dir)
		}
	}

	res := Result{ComposePath: filepath.Join(dir, ComposeFile)}
	if a.Compose == "" {
		loggerpkg.Warn(w.Logger, "no docker-compose block found in reply; writing empty file", map[string]any{
			"path": res.ComposePath,
		})
	}
	if err := w.writeFile(res.ComposePath, a.Compose); err != nil {
		return Result{}, err
	}

	if a.HasEnv {
		res.EnvPath = filepath.Join(dir, EnvFile)
		if err := w.writeFile(res.EnvPath, a.Env); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func (w Writer) writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	loggerpkg.Debug(w.Verbose, w.Logger, "artifact written", map[string]any{
		"path":  path,
		"bytes": len(content),
	})
	return nil
}
