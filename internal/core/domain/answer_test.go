package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateResult_Failed(t *testing.T) {
	assert.False(t, GenerateResult{Text: "answer"}.Failed())
	assert.True(t, GenerateResult{Err: "model not loaded"}.Failed())
	assert.False(t, GenerateResult{}.Failed())
}

func TestSourceDocument_ContextID(t *testing.T) {
	src := SourceDocument{FileName: "milling.pdf", PageNumber: 3, ChunkNumber: 2}

	assert.Equal(t, "milling.pdf:3:2", src.ContextID())
}

func TestSourceDocument_ContextID_OrderSensitiveComponents(t *testing.T) {
	a := SourceDocument{FileName: "x.pdf", PageNumber: 1, ChunkNumber: 2}
	b := SourceDocument{FileName: "x.pdf", PageNumber: 2, ChunkNumber: 1}

	assert.NotEqual(t, a.ContextID(), b.ContextID())
}
