// Package export renders notes as Markdown with YAML frontmatter for
// interop with plain-text vaults.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tamarel/folio/pkg/core"
)

// Render serializes one note as frontmatter + body. Linked articles are
// referenced by title, matching the library's soft-link convention.
func Render(n core.Note, doc *core.Document) ([]byte, error) {
	front := map[string]any{
		"title":   n.Title,
		"updated": n.UpdatedAt,
	}

	var linked []string
	for _, id := range n.ArticleIDs {
		if a, ok := doc.Article(id); ok {
			linked = append(linked, a.Title)
		}
	}
	if len(linked) > 0 {
		front["articles"] = linked
	}

	meta, err := yaml.Marshal(front)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(n.Content)
	if !strings.HasSuffix(n.Content, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// WriteAll renders every note into dir, one file per note, and returns the
// number written. File names derive from note titles, falling back to ids.
func WriteAll(ctx context.Context, svc *core.Service, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	doc := svc.Load(ctx)
	written := 0
	for _, n := range doc.Notes {
		data, err := Render(n, doc)
		if err != nil {
			return written, err
		}
		name := slug(n.Title)
		if name == "" {
			name = n.ID
		}
		path := filepath.Join(dir, name+".md")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
