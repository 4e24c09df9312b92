// Package main is the interactive Docker Compose generator for OpenWebUI.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	configpkg "github.com/minhyannv/compose-gen/pkg/config"
	"github.com/minhyannv/compose-gen/pkg/credentials"
	"github.com/minhyannv/compose-gen/pkg/generator"
	loggerpkg "github.com/minhyannv/compose-gen/pkg/logger"
	"github.com/minhyannv/compose-gen/pkg/output"
	"github.com/minhyannv/compose-gen/pkg/prompt"
	"github.com/minhyannv/compose-gen/pkg/reference"
)

// main is the program entry point.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard := saveTerminal(os.Stdin)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
		onInterrupt(guard.restore, os.Stdout, os.Exit)
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// run has already reported a missing key on stdout.
		if !errors.Is(err, credentials.ErrMissingCredential) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags *cliFlags
	cmd := &cobra.Command{
		Use:           "compose-gen",
		Short:         "Generate Docker Compose for OpenWebUI",
		Long:          "compose-gen asks about your OpenWebUI deployment preferences and has a language model write a docker-compose.yaml (and optionally a .env.generated) for you.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Flags(), flags)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	flags = bindFlags(cmd.Flags(), configpkg.DefaultConfig())
	return cmd
}

// run executes one generator session. It returns an error only when the
// session cannot start; conversation failures are reported on out.
func run(ctx context.Context, cfg configpkg.Config, in io.Reader, out, errOut io.Writer) error {
	appLogger := loggerpkg.NewWriterLogger(errOut, cfg.Verbose)

	_, _ = fmt.Fprintln(out, "OpenWebUI Docker Compose Generator")
	_, _ = fmt.Fprintln(out, "----------------------------------")

	lines := bufio.NewReader(in)
	terminal, _ := in.(*os.File)
	resolver := credentials.Resolver{
		EnvVar:     configpkg.APIKeyEnv,
		DotEnvPath: cfg.DotEnvPath,
		Prompter:   credentials.TerminalPrompter{Terminal: terminal, Lines: lines, Out: out},
		Logger:     appLogger,
		Verbose:    cfg.Verbose,
	}
	apiKey, err := resolver.Resolve()
	if err != nil {
		_, _ = fmt.Fprintln(out, "Error: OpenAI API key is required.")
		return err
	}
	cfg.APIKey = apiKey

	bundle := reference.Loader{
		StaticDir:   cfg.StaticRefDir,
		RepoDocsDir: cfg.RepoDocsDir,
		Source:      cfg.Reference,
		Logger:      appLogger,
		Verbose:     cfg.Verbose,
	}.Load()
	systemPrompt := prompt.BuildSystemPrompt(bundle, prompt.Options{EnvInFile: cfg.EnvInFile})

	session, err := generator.New(ctx, cfg, systemPrompt, generator.WithLogger(appLogger))
	if err != nil {
		return errors.Wrap(err, "start session")
	}

	return runSession(session, sessionOptions{
		Output:  output.Writer{Dir: cfg.OutputDir, Logger: appLogger, Verbose: cfg.Verbose},
		Verbose: cfg.Verbose,
		Logger:  appLogger,
	}, lines, out)
}
