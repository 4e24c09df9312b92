// Package prompt holds the fixed conversation text and system prompt assembly.
package prompt

import (
	"fmt"
	"strings"

	"github.com/minhyannv/compose-gen/pkg/reference"
)

const (
	EnvVarsBudget       = 4000
	SampleComposeBudget = 2000
	TruncationMarker    = "... [truncated]"

	// ReadySentinel marks an assistant reply that is ready to produce files.
	ReadySentinel = "I'll now generate your Docker Compose file"
)

// Greeting is shown to the user and recorded as the first assistant turn.
const Greeting = `I'll help you generate a customized Docker Compose file for OpenWebUI.
I'll ask you a series of questions about your preferences, and then generate the appropriate configuration.

First, would you prefer to have environment variables embedded directly in the Docker Compose file, or in a separate .env.generated file?`

// FinalizeInstruction asks the model for the final fenced output.
const FinalizeInstruction = "Based on our conversation, please generate:\n" +
	"1. A complete Docker Compose file for OpenWebUI with all the configurations we discussed\n" +
	"2. Environment variables (either embedded or in a separate file as requested)\n\n" +
	"Format your response as follows:\n" +
	"```docker-compose\n# Docker Compose content here\n```\n\n" +
	"If environment variables should be in a separate file:\n" +
	"```env\n# Environment variables content here\n```\n\n" +
	"Make sure to include all necessary services, volumes, and environment variables based on the user's preferences."

// Topics are the preference areas the model must ask about.
var Topics = []string{
	"Database configuration (SQLite or PostgreSQL)",
	"Vector database for RAG (Chroma, Milvus, Qdrant, OpenSearch, PGVector)",
	"Additional services like Redis",
	"Authentication options",
	"API integrations",
	"Other customizations",
}

// Options tweaks the assembled system prompt.
type Options struct {
	// EnvInFile requires environment variables in a separate file.
	EnvInFile bool
}

// BuildSystemPrompt constructs the system instruction from the reference bundle.
func BuildSystemPrompt(bundle reference.Bundle, opts Options) string {
	var sb strings.Builder
	sb.WriteString("You are an expert on OpenWebUI configuration and Docker Compose.\n")
	sb.WriteString("Your task is to help the user generate a customized Docker Compose file for OpenWebUI.\n")
	sb.WriteString("You should ask the user a series of questions about their preferences for:\n")
	for i, topic := range Topics {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, topic)
	}
	sb.WriteString("\nBased on their answers, you'll generate a complete Docker Compose file with all necessary services and volumes.\n")
	sb.WriteString("You'll also generate environment variables, which can be either embedded in the Docker Compose file or in a separate .env.generated file.\n")
	if opts.EnvInFile {
		sb.WriteString("The user has already asked for environment variables in a separate .env.generated file.\n")
	}
	sb.WriteString("When you have gathered enough information, say exactly \"")
	sb.WriteString(ReadySentinel)
	sb.WriteString("\".\n")

	sb.WriteString("\nHere's reference documentation on OpenWebUI environment variables:\n")
	sb.WriteString(Truncate(bundle.EnvVars, EnvVarsBudget))
	sb.WriteString(TruncationMarker)
	sb.WriteString("\n\nHere's a sample Docker Compose file for OpenWebUI:\n")
	sb.WriteString(Truncate(bundle.SampleCompose, SampleComposeBudget))
	sb.WriteString(TruncationMarker)
	sb.WriteString("\n")
	return sb.String()
}

// Truncate cuts s to at most n bytes without regard for content.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}

