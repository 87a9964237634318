package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "what is climb milling"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Climb milling cuts with the cutter rotation.")
	assert.Contains(t, buf.String(), "milling.pdf p.3")
	assert.Contains(t, buf.String(), "generated via local provider")
}

func TestAskCmd_CloudFlagPreference(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	query := &mockQueryService{}
	queryService = query

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--cloud", "question"})
	defer func() {
		rootCmd.SetArgs(nil)
		askCloud = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, query.lastOpts.UseCloud)
}

func TestAskCmd_FilterFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	query := &mockQueryService{}
	queryService = query

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--subject", "CAM", "--module", "Toolpaths", "question"})
	defer func() {
		rootCmd.SetArgs(nil)
		askSubject = ""
		askModule = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "CAM", query.lastOpts.Filters.Subject)
	assert.Equal(t, "Toolpaths", query.lastOpts.Filters.Module)
}

func TestAskCmd_CachedAnswerMarked(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	queryService = &mockQueryService{result: &domain.QueryResult{
		Question: "q",
		Answer:   "cached answer",
		Cached:   true,
		Mode:     domain.ModeLocal,
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "q"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "served from cache")
}

func TestAskCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	queryService = &mockQueryService{err: errors.New("provider down")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "q"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "q"})
	defer func() {
		rootCmd.SetArgs(nil)
		askJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"answer\"")
	assert.Contains(t, buf.String(), "\"total_sources\"")
}
