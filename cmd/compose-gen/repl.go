package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/minhyannv/compose-gen/pkg/generator"
	loggerpkg "github.com/minhyannv/compose-gen/pkg/logger"
	"github.com/minhyannv/compose-gen/pkg/output"
)

// sessionOptions configures the conversation loop.
type sessionOptions struct {
	Output  output.Writer
	Verbose bool
	Logger  loggerpkg.Logger
}

// runSession drives one conversation until the user leaves, input ends, or
// the files are generated. Model and write failures are printed and end the
// session without an error, so they do not change the exit status.
func runSession(s *generator.Session, opts sessionOptions, in io.Reader, out io.Writer) error {
	if s == nil {
		return errors.New("session is required")
	}
	if in == nil {
		return errors.New("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	scanner := bufio.NewScanner(in)
	_, _ = fmt.Fprintf(out, "AI: %s\n", s.Greeting())

	turn := 0
	for {
		_, _ = fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isExitCommand(input) {
			_, _ = fmt.Fprintln(out, "Exiting generator.")
			return nil
		}

		turn++
		loggerpkg.Debugf(opts.Verbose, opts.Logger, "turn %d", turn)
		reply, err := s.Send(input)
		if err != nil {
			loggerpkg.Error(opts.Logger, "model request failed", map[string]any{"turn": turn, "error": err.Error()})
			_, _ = fmt.Fprintf(out, "Error: %v\n", err)
			return nil
		}
		_, _ = fmt.Fprintf(out, "\nAI: %s\n", reply)

		if generator.ReadyToGenerate(reply) {
			loggerpkg.Debug(opts.Verbose, opts.Logger, "ready to generate", nil)
			finalize(s, opts, scanner, out)
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

func finalize(s *generator.Session, opts sessionOptions, scanner *bufio.Scanner, out io.Writer) {
	artifacts, err := s.Finalize()
	if err != nil {
		loggerpkg.Error(opts.Logger, "final request failed", map[string]any{"error": err.Error()})
		_, _ = fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	res, err := opts.Output.Write(artifacts)
	if err != nil {
		loggerpkg.Error(opts.Logger, "write generated files", map[string]any{"dir": opts.Output.Dir, "error": err.Error()})
		_, _ = fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if res.EnvPath != "" {
		_, _ = fmt.Fprintf(out, "\nEnvironment variables saved to %s\n", res.EnvPath)
	}
	_, _ = fmt.Fprintf(out, "\nDocker Compose file generated at %s\n", res.ComposePath)
	_, _ = fmt.Fprintln(out, "\nTo start your OpenWebUI stack, run:")
	_, _ = fmt.Fprintf(out, "cd %s && docker-compose up -d\n", opts.Output.Dir)

	_, _ = fmt.Fprint(out, "\nWould you like to see the generated files? (yes/no): ")
	if !scanner.Scan() {
		_, _ = fmt.Fprintln(out)
		return
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	if answer != "yes" && answer != "y" {
		return
	}

	_, _ = fmt.Fprintln(out, "\n--- Docker Compose File ---")
	_, _ = fmt.Fprintln(out, artifacts.Compose)
	if artifacts.HasEnv {
		_, _ = fmt.Fprintln(out, "\n--- Environment Variables ---")
		_, _ = fmt.Fprintln(out, artifacts.Env)
	}
}

func isExitCommand(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		return true
	default:
		return false
	}
}
