package services

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

// System personas for the two provider classes. Local models prefer a
// simple direct framing; cloud models get a tighter instruction set
// because their context is sanitized and truncated.
const (
	localSystemPrompt = "You are an expert engineering tutor. Use the provided context " +
		"to answer the question accurately and concisely. If the context " +
		"doesn't contain enough information, say so."

	cloudSystemPrompt = "You are Athena, an expert AI study partner. " +
		"Answer the question using ONLY the provided context. " +
		"Be clear, accurate, and helpful."
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?(?:\d{2,4}[-.\s]?){2,4}\d{2,4}\b`)
)

// PromptBuilder constructs LLM prompts from retrieved sources. Cloud
// prompts carry fewer, shorter, redacted excerpts; local prompts carry
// the full assembled context.
type PromptBuilder struct {
	maxChunksCloud     int
	maxChunkCharsCloud int
}

// NewPromptBuilder creates a prompt builder with the cloud context caps.
func NewPromptBuilder(maxChunksCloud, maxChunkCharsCloud int) *PromptBuilder {
	return &PromptBuilder{
		maxChunksCloud:     maxChunksCloud,
		maxChunkCharsCloud: maxChunkCharsCloud,
	}
}

// Build assembles the prompt for the given provider mode.
func (b *PromptBuilder) Build(question string, sources []domain.SourceDocument, mode string) string {
	if mode == domain.ModeCloud {
		return b.buildCloud(question, sources)
	}
	return b.buildLocal(question, sources)
}

func (b *PromptBuilder) buildLocal(question string, sources []domain.SourceDocument) string {
	return fmt.Sprintf("%s\n\nCONTEXT:\n%s\n\nQUESTION: %s\n\nANSWER:",
		localSystemPrompt, AssembleContext(sources), question)
}

func (b *PromptBuilder) buildCloud(question string, sources []domain.SourceDocument) string {
	if len(sources) > b.maxChunksCloud {
		sources = sources[:b.maxChunksCloud]
	}

	parts := make([]string, 0, len(sources))
	for i, source := range sources {
		text := SanitizeChunkText(source.Text, b.maxChunkCharsCloud)
		parts = append(parts, fmt.Sprintf("Source %d (%s):\n%s", i+1, source.FileName, text))
	}

	return fmt.Sprintf("%s\n\nCONTEXT:\n%s\n\nQUESTION: %s\n\nANSWER:",
		cloudSystemPrompt, strings.Join(parts, "\n\n"), question)
}

// AssembleContext formats sources into the excerpt list used by local
// prompts, each introduced by a header naming its file, subject/module
// and page.
func AssembleContext(sources []domain.SourceDocument) string {
	if len(sources) == 0 {
		return "No relevant context available."
	}

	parts := make([]string, 0, len(sources))
	for i, source := range sources {
		parts = append(parts, excerptHeader(source, i+1)+"\n"+source.Text)
	}
	return strings.Join(parts, "\n\n")
}

// excerptHeader renders one source header, for example:
// "--- Excerpt 1: manual.pdf | CAD → 2D_Transformations (Page 5) ---".
func excerptHeader(source domain.SourceDocument, index int) string {
	location := source.Subject
	if location != "" && source.Module != "" {
		location += " → " + source.Module
	}
	if location == "" {
		location = "General"
	}
	return fmt.Sprintf("--- Excerpt %d: %s | %s (Page %d) ---",
		index, source.FileName, location, source.PageNumber)
}

// SanitizeChunkText prepares chunk text for a cloud provider: HTML
// entities unescaped, emails and phone numbers redacted, text truncated
// at a word boundary when over maxChars.
func SanitizeChunkText(text string, maxChars int) string {
	t := html.UnescapeString(text)
	t = emailPattern.ReplaceAllString(t, "[REDACTED_EMAIL]")
	t = phonePattern.ReplaceAllString(t, "[REDACTED_PHONE]")
	if maxChars > 0 && len(t) > maxChars {
		cut := t[:maxChars]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		t = cut + " ... [TRUNCATED]"
	}
	return t
}
