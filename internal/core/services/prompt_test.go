package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

func testSources() []domain.SourceDocument {
	return []domain.SourceDocument{
		{
			Text:        "The feed rate for aluminium is 200 mm/min.",
			FileName:    "manual.pdf",
			Subject:     "Machining",
			Module:      "Milling",
			PageNumber:  3,
			ChunkNumber: 1,
		},
		{
			Text:        "Coolant must flow before engaging the cutter.",
			FileName:    "safety.pdf",
			Subject:     "Safety",
			PageNumber:  7,
			ChunkNumber: 2,
		},
		{
			Text:       "Lathe spindle limits are listed in appendix B.",
			FileName:   "lathe.pdf",
			PageNumber: 12,
		},
	}
}

func TestAssembleContext_Headers(t *testing.T) {
	context := AssembleContext(testSources())

	assert.Contains(t, context, "--- Excerpt 1: manual.pdf | Machining → Milling (Page 3) ---")
	assert.Contains(t, context, "--- Excerpt 2: safety.pdf | Safety (Page 7) ---")
	assert.Contains(t, context, "--- Excerpt 3: lathe.pdf | General (Page 12) ---")
	assert.Contains(t, context, "The feed rate for aluminium is 200 mm/min.")
}

func TestAssembleContext_Empty(t *testing.T) {
	assert.Equal(t, "No relevant context available.", AssembleContext(nil))
}

func TestBuild_LocalCarriesFullContext(t *testing.T) {
	b := NewPromptBuilder(2, 1500)
	prompt := b.Build("what feed rate?", testSources(), domain.ModeLocal)

	assert.Contains(t, prompt, "expert engineering tutor")
	assert.Contains(t, prompt, "QUESTION: what feed rate?")
	assert.True(t, strings.HasSuffix(prompt, "ANSWER:"))
	// Local prompts are not capped: all three sources appear.
	assert.Contains(t, prompt, "Excerpt 3: lathe.pdf")
}

func TestBuild_CloudCapsSourceCount(t *testing.T) {
	b := NewPromptBuilder(2, 1500)
	prompt := b.Build("question", testSources(), domain.ModeCloud)

	assert.Contains(t, prompt, "Source 1 (manual.pdf):")
	assert.Contains(t, prompt, "Source 2 (safety.pdf):")
	assert.NotContains(t, prompt, "lathe.pdf")
}

func TestSanitizeChunkText_RedactsContactDetails(t *testing.T) {
	got := SanitizeChunkText("contact lab.support@uni.edu or +44 20 7946 0958", 0)

	assert.Contains(t, got, "[REDACTED_EMAIL]")
	assert.Contains(t, got, "[REDACTED_PHONE]")
	assert.NotContains(t, got, "uni.edu")
}

func TestSanitizeChunkText_TruncatesAtWordBoundary(t *testing.T) {
	text := strings.Repeat("tolerance stackup analysis ", 20)
	got := SanitizeChunkText(text, 100)

	assert.True(t, strings.HasSuffix(got, " ... [TRUNCATED]"))
	assert.LessOrEqual(t, len(got), 100+len(" ... [TRUNCATED]"))
	assert.False(t, strings.Contains(strings.TrimSuffix(got, " ... [TRUNCATED]"), "  "))
}

func TestSanitizeChunkText_UnescapesEntities(t *testing.T) {
	got := SanitizeChunkText("depth &lt; 5mm &amp; width &gt; 2mm", 0)
	assert.Equal(t, "depth < 5mm & width > 2mm", got)
}

func TestSanitizeChunkText_ShortTextUntouched(t *testing.T) {
	assert.Equal(t, "short note", SanitizeChunkText("short note", 1500))
}
