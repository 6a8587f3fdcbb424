// Package importer reads external bookmark exports (Netscape HTML, YAML
// seed files) into neutral records and commits them to the store in batches.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrNotBookmarkFile means the input parsed as HTML but contains no bookmark
// list at all.
var ErrNotBookmarkFile = errors.New("no bookmark list found in file")

// Record is a single parsed bookmark, not yet bound to any collection or
// store entity. FolderPath is the slash-joined folder chain from the export
// ("Work/Projects"), empty for top-level bookmarks.
type Record struct {
	URL        string
	Title      string
	FolderPath string
	CreatedAt  *time.Time // nil when the export carries no ADD_DATE
}

// ParseResult is the outcome of parsing one export file.
type ParseResult struct {
	Records []Record
	// Folders is every folder path seen in the export, in document order,
	// including empty folders.
	Folders []string
	// Warnings are per-entry problems that skipped an entry without failing
	// the parse.
	Warnings []string
	// Truncated is set when the file held more records than the cap.
	Truncated bool
}

// ParseHTML parses a Netscape bookmark export. Entries with non-http(s)
// schemes are skipped with a warning. At most maxRecords records are
// returned (0 means no cap); the remainder sets Truncated.
func ParseHTML(r io.Reader, maxRecords int) (ParseResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse html: %w", err)
	}

	var res ParseResult
	var folderStack []string
	var pendingFolder string
	pendingSet := false
	sawList := false

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		// Once the cap is hit the rest of the document is ignored entirely:
		// no further records, folders or warnings.
		if res.Truncated {
			return
		}
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name != "" {
					pendingFolder = name
					pendingSet = true
					path := joinFolderPath(folderStack, name)
					res.Folders = append(res.Folders, path)
				}
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				if !httpScheme(href) {
					res.Warnings = append(res.Warnings,
						fmt.Sprintf("skipped non-http bookmark: %s", href))
					return
				}
				if maxRecords > 0 && len(res.Records) >= maxRecords {
					res.Truncated = true
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				var createdAt *time.Time
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						t := time.Unix(ts, 0)
						createdAt = &t
					}
				}

				res.Records = append(res.Records, Record{
					URL:        href,
					Title:      title,
					FolderPath: strings.Join(folderStack, "/"),
					CreatedAt:  createdAt,
				})
				return

			case "dl":
				sawList = true
				pushed := false
				if pendingSet {
					folderStack = append(folderStack, pendingFolder)
					pendingSet = false
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)

	if !sawList {
		return ParseResult{}, ErrNotBookmarkFile
	}
	if res.Truncated {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("file has more than %d bookmarks, extra entries ignored", maxRecords))
	}
	return res, nil
}

func joinFolderPath(stack []string, leaf string) string {
	if len(stack) == 0 {
		return leaf
	}
	return strings.Join(stack, "/") + "/" + leaf
}

func httpScheme(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
