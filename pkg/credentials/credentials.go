// Package credentials resolves the API key used for model requests.
package credentials

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	loggerpkg "github.com/minhyannv/compose-gen/pkg/logger"
)

// ErrMissingCredential is returned when no source yields a non-empty key.
var ErrMissingCredential = errors.New("OpenAI API key is required")

// Prompter asks the user for a value interactively.
type Prompter interface {
	Prompt(label string) (string, error)
}

// Resolver looks up a credential from the environment, a dotenv file, and
// finally an interactive prompt, in that order.
type Resolver struct {
	EnvVar     string
	DotEnvPath string
	Prompter   Prompter
	Logger     loggerpkg.Logger
	Verbose    bool
}

// Resolve returns the first non-empty credential. Values found in the dotenv
// file or entered at the prompt are exported into the process environment.
func (r Resolver) Resolve() (string, error) {
	if value := strings.TrimSpace(os.Getenv(r.EnvVar)); value != "" {
		loggerpkg.Debug(r.Verbose, r.Logger, "credential resolved", map[string]any{"source": "env"})
		return value, nil
	}

	if value := r.fromDotEnv(); value != "" {
		loggerpkg.Debug(r.Verbose, r.Logger, "credential resolved", map[string]any{"source": r.DotEnvPath})
		return value, r.export(value)
	}

	if r.Prompter == nil {
		return "", ErrMissingCredential
	}
	value, err := r.Prompter.Prompt("OpenAI API key not found in environment or .env file.\nPlease enter your OpenAI API key: ")
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "read API key"), ErrMissingCredential)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrMissingCredential
	}
	loggerpkg.Debug(r.Verbose, r.Logger, "credential resolved", map[string]any{"source": "prompt"})
	return value, r.export(value)
}

func (r Resolver) fromDotEnv() string {
	if r.DotEnvPath == "" {
		return ""
	}
	values, err := godotenv.Read(r.DotEnvPath)
	if err == nil {
		return strings.TrimSpace(values[r.EnvVar])
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ""
	}

	// godotenv rejects the whole file on one bad line; retry on the key's own line.
	value, lineErr := r.fromDotEnvLine()
	if value == "" {
		fields := map[string]any{"path": r.DotEnvPath, "key": r.EnvVar, "error": err.Error()}
		if lineErr != nil {
			fields["line_error"] = lineErr.Error()
		}
		loggerpkg.Warn(r.Logger, "dotenv file could not be parsed, "+r.EnvVar+" not read from it", fields)
		return ""
	}
	loggerpkg.Warn(r.Logger, "dotenv file has malformed lines, "+r.EnvVar+" read from its own line", map[string]any{
		"path":  r.DotEnvPath,
		"key":   r.EnvVar,
		"error": err.Error(),
	})
	return value
}

// fromDotEnvLine parses only the first line assigning EnvVar.
func (r Resolver) fromDotEnvLine() (string, error) {
	content, err := os.ReadFile(r.DotEnvPath)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", r.DotEnvPath)
	}
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "export "))
		if !strings.HasPrefix(trimmed, r.EnvVar+"=") {
			continue
		}
		values, err := godotenv.Unmarshal(trimmed)
		if err != nil {
			return "", errors.Wrapf(err, "parse %s line", r.EnvVar)
		}
		return strings.TrimSpace(values[r.EnvVar]), nil
	}
	return "", nil
}

func (r Resolver) export(value string) error {
	if err := os.Setenv(r.EnvVar, value); err != nil {
		return errors.Wrapf(err, "export %s", r.EnvVar)
	}
	return nil
}

// TerminalPrompter reads one line for a prompt. When Terminal refers to an
// interactive terminal the value is read from it without echo; otherwise the
// line is taken from Lines, which callers share with later input reads.
type TerminalPrompter struct {
	Terminal *os.File
	Lines    *bufio.Reader
	Out      io.Writer
}

// Prompt writes label and returns the entered line.
func (p TerminalPrompter) Prompt(label string) (string, error) {
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	_, _ = fmt.Fprint(out, label)

	if p.Terminal != nil && term.IsTerminal(int(p.Terminal.Fd())) {
		secret, err := term.ReadPassword(int(p.Terminal.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	if p.Lines == nil {
		return "", io.EOF
	}
	line, err := p.Lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
