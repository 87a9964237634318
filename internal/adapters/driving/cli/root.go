// Package cli implements the athena command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athena-labs/athena-cli/internal/adapters/driven/ai"
	answercache "github.com/athena-labs/athena-cli/internal/adapters/driven/cache/file"
	configfile "github.com/athena-labs/athena-cli/internal/adapters/driven/config/file"
	"github.com/athena-labs/athena-cli/internal/adapters/driven/extract/pdf"
	"github.com/athena-labs/athena-cli/internal/adapters/driven/lexical"
	"github.com/athena-labs/athena-cli/internal/adapters/driven/storage/sqlite"
	"github.com/athena-labs/athena-cli/internal/chunker"
	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
	"github.com/athena-labs/athena-cli/internal/core/ports/driving"
	"github.com/athena-labs/athena-cli/internal/core/services"
	"github.com/athena-labs/athena-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services wired at startup. Tests swap these directly.
var (
	settings       domain.Settings
	searchService  driving.SearchService
	ingestService  driving.IngestService
	queryService   driving.QueryService
	solverService  driving.SolverService
	documentSource driven.DocumentSource
	answerCache    *answercache.AnswerCache
	aiResult       *ai.InitResult
)

var rootCmd = &cobra.Command{
	Use:   "athena",
	Short: "Hybrid retrieval and Q&A over your PDF library",
	Long: `Athena indexes a directory of PDF documents and answers questions
about them by combining semantic (vector) search with keyword (BM25)
search, feeding the best excerpts to a local or cloud LLM.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.athena)")
}

// Execute runs the root command and releases any wired AI resources
// before returning.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// closeServices shuts down the provider and embedding HTTP clients
// created by ensureServices. Safe to call when nothing was wired.
func closeServices() {
	if aiResult != nil {
		aiResult.Close()
		aiResult = nil
	}
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

// ensureServices wires the full service graph on first use. Commands
// that only print (version, help) never pay the startup cost, and
// tests bypass wiring by assigning the service vars directly.
func ensureServices(cmd *cobra.Command) error {
	if searchService != nil && ingestService != nil && queryService != nil {
		return nil
	}

	dir := configDir
	if dir == "" {
		var err error
		dir, err = configfile.DefaultConfigDir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
	}

	loaded, err := configfile.LoadSettings(dir)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings = loaded

	result, err := ai.Initialise(settings)
	if err != nil {
		return err
	}
	aiResult = result
	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	store, err := sqlite.NewStore(settings.IndexDir)
	if err != nil {
		result.Close()
		return fmt.Errorf("open vector store: %w", err)
	}

	var lex driven.LexicalIndex
	if settings.EnableBM25 {
		idx := lexical.New()
		// The BM25 index lives in memory; rebuild it from the
		// persisted corpus so a fresh process can score lexically.
		docs, metas, err := store.All(context.Background())
		if err != nil {
			cmd.PrintErrf("Warning: lexical index unavailable: %v\n", err)
		} else {
			idx.Build(docs, metas)
			lex = idx
		}
	}

	cache, err := answercache.NewAnswerCache(settings.CacheDir)
	if err != nil {
		result.Close()
		return fmt.Errorf("open answer cache: %w", err)
	}
	answerCache = cache

	extractor := pdf.NewExtractor()
	documentSource = extractor

	ch := chunker.New(
		chunker.WithChunkSize(settings.ChunkSize),
		chunker.WithOverlap(settings.ChunkOverlap),
	)

	search := services.NewSearchService(store, lex, result.EmbeddingService)
	searchService = search
	ingestService = services.NewIngestService(
		extractor, ch, result.EmbeddingService, store, lex, settings.MinChunkChars,
	)
	prompts := services.NewPromptBuilder(settings.MaxChunksCloud, settings.MaxChunkCharsCloud)
	queryService = services.NewQueryService(search, cache, result.Providers, prompts, settings)
	solverService = services.NewSolverService(extractor, queryService)

	return nil
}
