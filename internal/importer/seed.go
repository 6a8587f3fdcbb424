package importer

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// seedFile is the root structure of a YAML seed file:
//
//	bookmarks:
//	  - url: https://go.dev
//	    title: The Go Programming Language
//	    folder: Dev
//	    createdAt: 2025-06-01T12:00:00Z
type seedFile struct {
	Bookmarks []seedEntry `yaml:"bookmarks"`
}

type seedEntry struct {
	URL       string     `yaml:"url"`
	Title     string     `yaml:"title"`
	Folder    string     `yaml:"folder"`
	CreatedAt *time.Time `yaml:"createdAt"`
}

// ParseSeed parses a YAML seed file into import records, the same shape the
// HTML parser produces, so both formats share one commit path. Entries
// without a URL or with a non-http(s) scheme are skipped with a warning.
func ParseSeed(r io.Reader) (ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ParseResult{}, fmt.Errorf("parse seed yaml: %w", err)
	}

	var res ParseResult
	folderSeen := make(map[string]bool)

	for i, entry := range file.Bookmarks {
		if entry.URL == "" {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("entry %d has no url, skipped", i+1))
			continue
		}
		if !httpScheme(entry.URL) {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("skipped non-http bookmark: %s", entry.URL))
			continue
		}

		title := entry.Title
		if title == "" {
			title = entry.URL
		}
		if entry.Folder != "" && !folderSeen[entry.Folder] {
			folderSeen[entry.Folder] = true
			res.Folders = append(res.Folders, entry.Folder)
		}

		res.Records = append(res.Records, Record{
			URL:        entry.URL,
			Title:      title,
			FolderPath: entry.Folder,
			CreatedAt:  entry.CreatedAt,
		})
	}

	return res, nil
}
