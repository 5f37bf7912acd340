// Package knowledge is the personal knowledge base: documents chunked,
// embedded, and stored in a chromem collection that persists between
// runs.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"
)

const chunkSize = 800 // runes per chunk, split on paragraph boundaries where possible

// Chunk is one retrieved piece of stored knowledge.
type Chunk struct {
	Content    string
	Source     string
	Similarity float32
}

// Base wraps one chromem collection.
type Base struct {
	db  *chromem.DB
	col *chromem.Collection
}

// Open creates or reopens the knowledge base. persistPath may be empty
// for an in-memory base (tests).
func Open(persistPath, collection string, embed chromem.EmbeddingFunc) (*Base, error) {
	if collection == "" {
		collection = "friday"
	}

	var (
		db  *chromem.DB
		err error
	)
	if persistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(persistPath, "knowledge.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("open persistent store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	col, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	return &Base{db: db, col: col}, nil
}

// IngestText chunks text and stores every chunk under the given source
// name.
func (b *Base) IngestText(ctx context.Context, source, text string) (int, error) {
	chunks := splitChunks(text, chunkSize)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("nothing to ingest from %s", source)
	}
	for i, chunk := range chunks {
		err := b.col.AddDocument(ctx, chromem.Document{
			ID:       fmt.Sprintf("%s#%d", source, i),
			Content:  chunk,
			Metadata: map[string]string{"source": source},
		})
		if err != nil {
			return 0, fmt.Errorf("add chunk %d of %s: %w", i, source, err)
		}
	}
	return len(chunks), nil
}

// IngestFile reads a text file and stores it.
func (b *Base) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return b.IngestText(ctx, filepath.Base(path), string(data))
}

// Query returns up to k chunks ranked by similarity.
func (b *Base) Query(ctx context.Context, text string, k int) ([]Chunk, error) {
	if n := b.col.Count(); n < k {
		k = n
	}
	if k == 0 {
		return nil, nil
	}
	results, err := b.col.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	out := make([]Chunk, 0, len(results))
	for _, r := range results {
		out = append(out, Chunk{
			Content:    r.Content,
			Source:     r.Metadata["source"],
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

func (b *Base) Count() int { return b.col.Count() }

// splitChunks breaks text into pieces of at most max runes, preferring
// paragraph breaks.
func splitChunks(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para) > max {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		for len([]rune(para)) > max {
			runes := []rune(para)
			chunks = append(chunks, string(runes[:max]))
			para = string(runes[max:])
		}
		if para != "" {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
