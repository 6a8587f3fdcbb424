// Package exporter writes the bookmark collection back out as Netscape
// bookmark HTML, the format browsers import.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mbuchner/linkhaven/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/linkhaven-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("linkhaven-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the state as Netscape bookmark HTML. Bookmarks are
// grouped by collection, one folder per non-system collection; unsorted
// bookmarks sit at the root. Trashed bookmarks are excluded, archived ones
// are kept.
func ExportHTML(state *model.State) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, c := range state.Collections {
		if c.IsSystem {
			continue
		}
		members := collectionBookmarks(state, c.ID)
		fmt.Fprintf(&b, "    <DT><H3>%s</H3>\n", html.EscapeString(c.Name))
		b.WriteString("    <DL><p>\n")
		for _, bm := range members {
			writeBookmark(&b, bm, 2)
		}
		b.WriteString("    </DL><p>\n")
	}

	for _, bm := range collectionBookmarks(state, model.CollectionUnsorted) {
		writeBookmark(&b, bm, 1)
	}

	b.WriteString("</DL><p>\n")
	return b.String()
}

func collectionBookmarks(state *model.State, collectionID string) []model.Bookmark {
	var out []model.Bookmark
	for _, bm := range state.Bookmarks {
		if bm.IsTrashed || bm.CollectionID != collectionID {
			continue
		}
		out = append(out, bm)
	}
	return out
}

func writeBookmark(b *strings.Builder, bm model.Bookmark, indent int) {
	prefix := strings.Repeat("    ", indent)
	fmt.Fprintf(b,
		"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
		prefix,
		html.EscapeString(bm.URL),
		bm.CreatedAt.Unix(),
		html.EscapeString(bm.Title),
	)
}
