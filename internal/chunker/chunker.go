// Package chunker splits page text into bounded, semantically coherent
// segments with overlap. Splitting is deterministic: the same input and
// parameters always yield the same chunk sequence, which stable chunk
// IDs depend on.
package chunker

import "strings"

// DefaultChunkSize is the default maximum chunk length in characters.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default overlap carried between chunks in characters.
const DefaultChunkOverlap = 150

// Chunker accumulates sentences greedily into chunks of at most
// chunkSize characters, seeding each new chunk with the trailing
// tokens of the previous one.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Split chunks the text on sentence boundaries. A sentence that alone
// exceeds the chunk size is still emitted whole, never truncated
// mid-sentence. Empty input yields no chunks.
//
// Minimum-length filtering is the caller's concern: ingestion drops
// short chunks while numbering positions over the full sequence, so
// the sequence returned here is complete.
func (c *Chunker) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > c.chunkSize {
			chunk := strings.TrimSpace(current.String())
			chunks = append(chunks, chunk)
			current.Reset()

			seed := c.overlapTail(chunk)
			if seed != "" {
				current.WriteString(seed)
				current.WriteString(" ")
			}
			current.WriteString(sentence)
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}

	return chunks
}

// overlapTail returns the trailing tokens of chunk whose joined length
// fits within the configured overlap.
func (c *Chunker) overlapTail(chunk string) string {
	if c.overlap <= 0 {
		return ""
	}

	tokens := strings.Fields(chunk)
	length := 0
	start := len(tokens)

	for i := len(tokens) - 1; i >= 0; i-- {
		add := len(tokens[i])
		if length > 0 {
			add++ // joining space
		}
		if length+add > c.overlap {
			break
		}
		length += add
		start = i
	}

	if start == len(tokens) {
		return ""
	}
	return strings.Join(tokens[start:], " ")
}

// splitSentences splits text on terminal punctuation (".", "?", "!"),
// trimming whitespace and discarding empties.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		switch r {
		case '.', '?', '!':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}
