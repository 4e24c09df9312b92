// Package extract pulls named fenced code blocks out of model replies.
package extract

import (
	"strings"
	"unicode"
)

const fence = "```"

// Fence tags recognised in the final reply.
const (
	TagCompose = "docker-compose"
	TagYAML    = "yaml"
	TagEnv     = "env"
)

// Block is one fenced block: the word after the opening fence and the
// trimmed text up to the closing fence.
type Block struct {
	Tag     string
	Content string
}

// Artifacts are the files produced from the final reply.
type Artifacts struct {
	Compose string
	Env     string
	HasEnv  bool
}

// Blocks returns every fenced block in text, in order of appearance. An
// unterminated block runs to the end of text.
func Blocks(text string) []Block {
	var blocks []Block
	rest := text
	for {
		open := strings.Index(rest, fence)
		if open < 0 {
			return blocks
		}
		rest = rest[open+len(fence):]

		tagEnd := strings.IndexFunc(rest, unicode.IsSpace)
		if tagEnd < 0 {
			tagEnd = strings.Index(rest, fence)
			if tagEnd < 0 {
				tagEnd = len(rest)
			}
		}
		if closeAt := strings.Index(rest[:tagEnd], fence); closeAt >= 0 {
			tagEnd = closeAt
		}
		tag := rest[:tagEnd]
		rest = rest[tagEnd:]

		closeAt := strings.Index(rest, fence)
		if closeAt < 0 {
			blocks = append(blocks, Block{Tag: tag, Content: strings.TrimSpace(rest)})
			return blocks
		}
		blocks = append(blocks, Block{Tag: tag, Content: strings.TrimSpace(rest[:closeAt])})
		rest = rest[closeAt+len(fence):]
	}
}

// Find returns the content of the first block tagged tag.
func Find(blocks []Block, tag string) (string, bool) {
	for _, b := range blocks {
		if b.Tag == tag {
			return b.Content, true
		}
	}
	return "", false
}

// FromReply extracts the compose file (docker-compose block, else yaml block)
// and the optional env block. Each block is located by its own opening
// marker, so unrelated fences elsewhere in the reply do not shift it. A reply
// without either compose marker yields an empty Compose.
func FromReply(reply string) Artifacts {
	compose, ok := FindMarked(reply, TagCompose)
	if !ok || compose == "" {
		if yamlBlock, found := FindMarked(reply, TagYAML); found {
			compose = yamlBlock
		}
	}
	env, hasEnv := FindMarked(reply, TagEnv)
	if env == "" {
		hasEnv = false
	}
	return Artifacts{Compose: compose, Env: env, HasEnv: hasEnv}
}

// FindMarked returns the trimmed text between the first "```<tag>" marker and
// the next fence (or end of text). The marker must be followed by whitespace,
// a fence, or the end of text, so "```env" does not match "```environment".
func FindMarked(text, tag string) (string, bool) {
	marker := fence + tag
	offset := 0
	for {
		at := strings.Index(text[offset:], marker)
		if at < 0 {
			return "", false
		}
		bodyStart := offset + at + len(marker)
		body := text[bodyStart:]
		if body == "" || strings.HasPrefix(body, fence) || unicode.IsSpace(rune(body[0])) {
			if closeAt := strings.Index(body, fence); closeAt >= 0 {
				body = body[:closeAt]
			}
			return strings.TrimSpace(body), true
		}
		offset = bodyStart
	}
}
