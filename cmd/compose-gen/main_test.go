package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhyannv/compose-gen/internal/llmtest"
	configpkg "github.com/minhyannv/compose-gen/pkg/config"
	"github.com/minhyannv/compose-gen/pkg/credentials"
)

type cliResult struct {
	out    string
	errOut string
	err    error
	outDir string
}

// runCLI executes the root command against a scripted model server with
// every file path inside a temp dir.
func runCLI(t *testing.T, srv *llmtest.Server, stdin string, args ...string) cliResult {
	t.Helper()
	root := t.TempDir()
	outDir := filepath.Join(root, "generated")
	settings := filepath.Join(root, "compose-gen.yaml")
	content := "dotenv_path: " + filepath.Join(root, ".env") + "\n" +
		"static_ref_dir: " + filepath.Join(root, "static-ref") + "\n" +
		"repo_docs_dir: " + filepath.Join(root, "repo-docs") + "\n"
	require.NoError(t, os.WriteFile(settings, []byte(content), 0o644))

	t.Setenv(configpkg.BaseURLEnv, srv.URL)
	t.Setenv(configpkg.ModelEnv, "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", settings, "--output-dir", outDir}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return cliResult{out: out.String(), errOut: errOut.String(), err: err, outDir: outDir}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestExitKeywordsEndWithoutModelCall(t *testing.T) {
	for _, keyword := range []string{"exit", "quit", "Q", "EXIT"} {
		t.Run(keyword, func(t *testing.T) {
			t.Setenv(configpkg.APIKeyEnv, "test-key")
			srv := llmtest.NewServer(t)

			res := runCLI(t, srv, keyword+"\n")

			require.NoError(t, res.err)
			assert.Contains(t, res.out, "AI: I'll help you generate")
			assert.Contains(t, res.out, "Exiting generator.")
			assert.Empty(t, srv.Requests())
			_, err := os.Stat(res.outDir)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestBlankLinesSkippedAndInputTrimmed(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "test-key")
	srv := llmtest.NewServer(t)

	res := runCLI(t, srv, "\n   \n\t\n  Quit \n")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Exiting generator.")
	assert.Equal(t, 4, strings.Count(res.out, "You: "))
	assert.Empty(t, srv.Requests())
}

func TestVerboseLogsTurns(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "test-key")
	srv := llmtest.NewServer(t, llmtest.Reply{Content: "Which database?"})

	res := runCLI(t, srv, "postgres\nq\n", "--verbose")

	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "turn 1")
	assert.NotContains(t, res.out, "turn 1")
}

func TestSentInputIsTrimmed(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "test-key")
	srv := llmtest.NewServer(t, llmtest.Reply{Content: "Which database?"})

	res := runCLI(t, srv, "\n  use postgres  \nq\n")

	require.NoError(t, res.err)
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	last := reqs[0].Messages[len(reqs[0].Messages)-1]
	assert.Equal(t, "use postgres", last.Content)
}

func TestFullConversationWritesArtifacts(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "test-key")
	srv := llmtest.NewServer(t,
		llmtest.Reply{Content: "Got it. I'll now generate your Docker Compose file."},
		llmtest.Reply{Content: "```docker-compose\nFOO\n```\n\n```env\nBAR\n```"},
	)

	res := runCLI(t, srv, "postgres with qdrant\nyes\n", "--env-in-file")

	require.NoError(t, res.err)
	assert.Equal(t, "FOO", readFile(t, filepath.Join(res.outDir, "docker-compose.yaml")))
	assert.Equal(t, "BAR", readFile(t, filepath.Join(res.outDir, ".env.generated")))
	assert.Contains(t, res.out, "Environment variables saved to "+filepath.Join(res.outDir, ".env.generated"))
	assert.Contains(t, res.out, "Docker Compose file generated at "+filepath.Join(res.outDir, "docker-compose.yaml"))
	assert.Contains(t, res.out, "cd "+res.outDir+" && docker-compose up -d")
	assert.Contains(t, res.out, "--- Docker Compose File ---\nFOO")
	assert.Contains(t, res.out, "--- Environment Variables ---\nBAR")

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "gpt-4", reqs[0].Model)
	assert.Contains(t, reqs[0].Messages[0].Content, "already asked for environment variables")
	assert.EqualValues(t, 1500, reqs[0].MaxTokens)
	assert.EqualValues(t, 2000, reqs[1].MaxTokens)
}

func TestUnfencedReplyWritesEmptyCompose(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "test-key")
	srv := llmtest.NewServer(t,
		llmtest.Reply{Content: "I'll now generate your Docker Compose file"},
		llmtest.Reply{Content: "Sorry, here is some prose instead."},
	)

	res := runCLI(t, srv, "defaults\nno\n")

	require.NoError(t, res.err)
	assert.Empty(t, readFile(t, filepath.Join(res.outDir, "docker-compose.yaml")))
	_, err := os.Stat(filepath.Join(res.outDir, ".env.generated"))
	assert.True(t, os.IsNotExist(err))
	assert.NotContains(t, res.out, "--- Docker Compose File ---")
}

func TestModelErrorOnFirstTurn(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "bad-key")
	srv := llmtest.NewServer(t, llmtest.Reply{Status: http.StatusUnauthorized, Content: "Incorrect API key provided"})

	res := runCLI(t, srv, "hello\nmore input\n")

	require.NoError(t, res.err)
	assert.Equal(t, 1, strings.Count(res.out, "Error: "))
	assert.Contains(t, res.out, "401")
	assert.Contains(t, res.errOut, "model request failed")
	assert.Len(t, srv.Requests(), 1)
	_, err := os.Stat(res.outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestFinalizeErrorWritesNothing(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "test-key")
	srv := llmtest.NewServer(t,
		llmtest.Reply{Content: "I'll now generate your Docker Compose file"},
		llmtest.Reply{Status: http.StatusTooManyRequests, Content: "quota exceeded"},
	)

	res := runCLI(t, srv, "go\n")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Error: ")
	assert.Contains(t, res.out, "429")
	_, err := os.Stat(res.outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestMissingCredentialFails(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "")
	srv := llmtest.NewServer(t)

	res := runCLI(t, srv, "")

	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, credentials.ErrMissingCredential))
	assert.Contains(t, res.out, "Error: OpenAI API key is required.")
	assert.Empty(t, srv.Requests())
}

func TestPromptedCredentialIsUsed(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "")
	srv := llmtest.NewServer(t)

	res := runCLI(t, srv, "sk-typed\nq\n")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Please enter your OpenAI API key: ")
	assert.Contains(t, res.out, "Exiting generator.")
	assert.Equal(t, "sk-typed", os.Getenv(configpkg.APIKeyEnv))
}

func TestInvalidReferenceFlag(t *testing.T) {
	t.Setenv(configpkg.APIKeyEnv, "test-key")
	res := runCLI(t, llmtest.NewServer(t), "", "--reference", "wiki")
	require.Error(t, res.err)
}
