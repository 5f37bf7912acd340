package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"friday/internal/nlu"
	"friday/internal/session"
)

var audioExts = map[string]bool{
	".wav": true, ".mp3": true, ".ogg": true, ".oga": true, ".opus": true,
}

var knowledgeStripWords = nlu.DefaultTable().Keywords(nlu.Knowledge)

// newKnowledgeHandler serves the personal knowledge base. "ingest
// <path>" stores a document (voice memos are transcribed first);
// anything else is treated as a query against what was stored.
func newKnowledgeHandler(svc Services) Handler {
	return func(ctx context.Context, s *session.Session, utterance string) string {
		if s.Knowledge == nil {
			return "The knowledge base isn't configured."
		}
		lower := strings.ToLower(utterance)

		if i := strings.Index(lower, "ingest"); i >= 0 {
			path := strings.TrimSpace(utterance[i+len("ingest"):])
			path = strings.TrimSpace(strings.TrimPrefix(path, "file "))
			if path == "" {
				return "Which file should I ingest?"
			}
			return ingest(ctx, svc, s, path)
		}

		query := stripKeywords(utterance, knowledgeStripWords)
		query = strings.TrimSpace(strings.TrimPrefix(query, "about "))
		if query == "" {
			return "What should I look up in the knowledge base?"
		}
		chunks, err := s.Knowledge.Query(ctx, query, 3)
		if err != nil || len(chunks) == 0 {
			return "I don't have anything about that yet."
		}
		parts := make([]string, 0, len(chunks))
		for _, c := range chunks {
			parts = append(parts, c.Content)
		}
		return "Here's what I know: " + strings.Join(parts, " ")
	}
}

func ingest(ctx context.Context, svc Services, s *session.Session, path string) string {
	if audioExts[strings.ToLower(filepath.Ext(path))] {
		if svc.Transcribe == nil {
			return "I can't transcribe audio files here."
		}
		text, err := svc.Transcribe(ctx, path)
		if err != nil {
			return "I couldn't transcribe " + path + "."
		}
		n, err := s.Knowledge.IngestText(ctx, filepath.Base(path), text)
		if err != nil {
			return "I couldn't store the transcript of " + path + "."
		}
		return fmt.Sprintf("Transcribed and stored %d chunks from %s.", n, filepath.Base(path))
	}

	n, err := s.Knowledge.IngestFile(ctx, path)
	if err != nil {
		return "I couldn't ingest " + path + "."
	}
	return fmt.Sprintf("Stored %d chunks from %s.", n, filepath.Base(path))
}
