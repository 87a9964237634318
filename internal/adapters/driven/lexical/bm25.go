// Package lexical provides the in-memory BM25 keyword index.
//
// The index is always rebuilt in full from the vector store's
// documents after an ingestion batch; incremental updates are
// deliberately unsupported, keeping the two indexes set-equal by
// construction.
package lexical

import (
	"math"
	"strings"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
	"github.com/athena-labs/athena-cli/internal/logger"
)

// Okapi BM25 parameters.
const (
	k1      = 1.5
	b       = 0.75
	epsilon = 0.25
)

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// Index is an Okapi BM25 ranking structure over a tokenized corpus.
type Index struct {
	documents []string
	metas     []domain.ChunkMeta

	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// New creates an empty, unready index.
func New() *Index {
	return &Index{}
}

// Tokenize lowercases and whitespace-splits text. No stemming, no
// stop words; query and corpus go through the same function.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Build constructs the ranking structure over the documents. Any
// previous corpus is discarded. An empty document list leaves the
// index unready.
func (idx *Index) Build(documents []string, metas []domain.ChunkMeta) {
	idx.documents = nil
	idx.metas = nil
	idx.termFreqs = nil
	idx.docLens = nil
	idx.avgDocLen = 0
	idx.idf = nil

	if len(documents) == 0 {
		logger.Debug("Lexical index: empty corpus, index unready")
		return
	}

	idx.documents = documents
	idx.metas = metas
	idx.termFreqs = make([]map[string]int, len(documents))
	idx.docLens = make([]int, len(documents))

	docFreq := make(map[string]int)
	totalLen := 0

	for i, doc := range documents {
		tokens := Tokenize(doc)
		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for tok := range freqs {
			docFreq[tok]++
		}
		idx.termFreqs[i] = freqs
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}

	idx.avgDocLen = float64(totalLen) / float64(len(documents))
	idx.idf = computeIDF(docFreq, len(documents))

	logger.Info("Lexical index built with %d documents", len(documents))
}

// Scores returns one raw BM25 score per indexed document, in corpus
// order. Unbounded above; the ranker max-normalizes them.
func (idx *Index) Scores(queryTokens []string) []float64 {
	scores := make([]float64, len(idx.documents))
	if len(idx.documents) == 0 {
		return scores
	}

	for i := range idx.documents {
		dl := float64(idx.docLens[i])
		norm := k1 * (1 - b + b*dl/idx.avgDocLen)
		var score float64
		for _, tok := range queryTokens {
			tf := float64(idx.termFreqs[i][tok])
			if tf == 0 {
				continue
			}
			score += idx.idf[tok] * tf * (k1 + 1) / (tf + norm)
		}
		scores[i] = score
	}

	return scores
}

// Corpus returns the indexed documents and metadata in corpus order.
func (idx *Index) Corpus() ([]string, []domain.ChunkMeta) {
	return idx.documents, idx.metas
}

// Ready reports whether the index holds a non-empty corpus.
func (idx *Index) Ready() bool {
	return len(idx.documents) > 0
}

// computeIDF derives per-term inverse document frequencies. Terms in
// more than half the corpus get a negative raw IDF; those are floored
// to epsilon times the average IDF so common terms still contribute a
// small positive amount.
func computeIDF(docFreq map[string]int, n int) map[string]float64 {
	idf := make(map[string]float64, len(docFreq))
	var sum float64
	var negative []string

	for term, df := range docFreq {
		v := math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
		idf[term] = v
		sum += v
		if v < 0 {
			negative = append(negative, term)
		}
	}

	avg := sum / float64(len(docFreq))
	floor := epsilon * avg
	for _, term := range negative {
		idf[term] = floor
	}

	return idf
}
