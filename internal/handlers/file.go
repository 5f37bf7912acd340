package handlers

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"friday/internal/session"
)

const maxFileMatches = 50

func newFileHandler(svc Services) Handler {
	return func(_ context.Context, _ *session.Session, utterance string) string {
		lower := strings.ToLower(utterance)
		switch {
		case strings.Contains(lower, "list"):
			return listFiles(".")
		case strings.Contains(lower, "create folder"), strings.Contains(lower, "make folder"):
			return createFolder(folderArg(lower, "create folder", "make folder"))
		case strings.Contains(lower, "delete folder"), strings.Contains(lower, "remove folder"):
			return deleteFolder(folderArg(lower, "delete folder", "remove folder"))
		case strings.Contains(lower, "open folder"):
			return openFolder(svc, folderArg(lower, "open folder"))
		case strings.Contains(lower, "find"), strings.Contains(lower, "search"):
			return findFiles(searchRoot(svc), fileQuery(lower))
		default:
			return "File command not recognized. Try list, create folder, delete folder, open folder, or find."
		}
	}
}

func listFiles(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "I couldn't read the current directory."
	}
	if len(entries) == 0 {
		return "The current directory is empty."
	}
	names := make([]string, 0, 10)
	for _, e := range entries {
		names = append(names, e.Name())
		if len(names) == 10 {
			break
		}
	}
	return "Files here: " + strings.Join(names, ", ")
}

func createFolder(name string) string {
	if name == "" {
		name = "NewFolder"
	}
	if err := os.MkdirAll(name, 0o755); err != nil {
		return "I couldn't create the folder " + name + "."
	}
	return "Created folder " + name + "."
}

func deleteFolder(name string) string {
	if name == "" {
		return "Which folder should I delete?"
	}
	if err := os.Remove(name); err != nil {
		return "I couldn't delete the folder " + name + ". It may not exist or isn't empty."
	}
	return "Deleted folder " + name + "."
}

func openFolder(svc Services, name string) string {
	if svc.Runner == nil {
		return "I can't open folders here."
	}
	if name == "" {
		name = "."
	}
	if err := svc.Runner.Start("xdg-open", name); err != nil {
		return "I couldn't open the folder " + name + "."
	}
	return "Opening folder " + name + "."
}

func findFiles(root, query string) string {
	if query == "" {
		return "What file should I look for?"
	}
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep going
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.Contains(strings.ToLower(d.Name()), query) {
			matches = append(matches, path)
			if len(matches) >= maxFileMatches {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil || len(matches) == 0 {
		return "I couldn't find any file matching " + query + "."
	}
	n := len(matches)
	shown := matches
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return fmt.Sprintf("I found %d files matching %s. First ones: %s", n, query, strings.Join(shown, ", "))
}

func searchRoot(svc Services) string {
	if svc.SearchRoot != "" {
		return svc.SearchRoot
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// folderArg returns the first word after any of the trigger phrases.
func folderArg(lower string, phrases ...string) string {
	for _, p := range phrases {
		if i := strings.Index(lower, p); i >= 0 {
			rest := strings.Fields(lower[i+len(p):])
			if len(rest) > 0 {
				return rest[0]
			}
		}
	}
	return ""
}

// fileQuery drops the command and filler words and returns what is
// left as the name fragment to search for.
func fileQuery(lower string) string {
	skip := map[string]bool{
		"find": true, "search": true, "for": true, "file": true,
		"files": true, "my": true, "a": true, "the": true, "named": true, "called": true,
	}
	var kept []string
	for _, tok := range strings.Fields(lower) {
		if !skip[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}
