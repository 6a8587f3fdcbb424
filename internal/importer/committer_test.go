package importer

import (
	"strings"
	"testing"

	"github.com/mbuchner/linkhaven/internal/model"
	"github.com/mbuchner/linkhaven/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.Params{})
	t.Cleanup(s.Close)
	return s
}

func TestCommit_CreatesCollectionsFromFolders(t *testing.T) {
	s := newTestStore(t)
	c := NewCommitter(s, 0, nil)

	records := []Record{
		{URL: "https://go.dev", Title: "Go"},
		{URL: "https://github.com", Title: "GitHub", FolderPath: "Work"},
		{URL: "https://pkg.go.dev", Title: "Packages", FolderPath: "Work/Projects"},
	}

	summary := c.Commit(records, CommitOptions{})
	if summary.Imported != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	byName := make(map[string]string)
	for _, coll := range s.Collections() {
		byName[coll.Name] = coll.ID
	}
	// Only the deepest folder name becomes a collection.
	if _, ok := byName["Work"]; !ok {
		t.Error("expected a Work collection")
	}
	if _, ok := byName["Projects"]; !ok {
		t.Error("expected a Projects collection for the nested folder")
	}

	for _, b := range s.Bookmarks() {
		switch b.Title {
		case "Go":
			if b.CollectionID != model.CollectionUnsorted {
				t.Errorf("top-level record should land in unsorted, got %q", b.CollectionID)
			}
		case "GitHub":
			if b.CollectionID != byName["Work"] {
				t.Errorf("GitHub in %q, want Work", b.CollectionID)
			}
		case "Packages":
			if b.CollectionID != byName["Projects"] {
				t.Errorf("Packages in %q, want Projects", b.CollectionID)
			}
		}
	}
}

func TestCommit_ReusesExistingCollectionCaseInsensitively(t *testing.T) {
	s := newTestStore(t)
	existing, _ := s.AddCollection(model.NewCollectionParams{Name: "work"})

	c := NewCommitter(s, 0, nil)
	c.Commit([]Record{
		{URL: "https://github.com", Title: "GitHub", FolderPath: "Work"},
	}, CommitOptions{})

	count := 0
	for _, coll := range s.Collections() {
		if strings.EqualFold(coll.Name, "work") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected the existing collection to be reused, found %d", count)
	}

	b := s.Bookmarks()[0]
	if b.CollectionID != existing.ID {
		t.Errorf("bookmark in %q, want existing collection %q", b.CollectionID, existing.ID)
	}
}

func TestCommit_SkipDuplicates(t *testing.T) {
	s := newTestStore(t)
	s.AddBookmark(model.NewBookmarkParams{URL: "http://Example.com/", Title: "Existing"})

	c := NewCommitter(s, 0, nil)
	summary := c.Commit([]Record{
		// Same canonical URL as the existing bookmark.
		{URL: "http://example.com", Title: "Duplicate"},
		{URL: "https://fresh.example.com", Title: "Fresh"},
		// Duplicate within the run itself.
		{URL: "https://fresh.example.com/", Title: "Fresh again"},
	}, CommitOptions{SkipDuplicates: true})

	if summary.Imported != 1 || summary.Skipped != 2 {
		t.Errorf("summary = %+v, want 1 imported / 2 skipped", summary)
	}
	if got := len(s.Bookmarks()); got != 2 {
		t.Errorf("expected 2 bookmarks total, got %d", got)
	}
}

func TestCommit_WithoutSkipImportsEverything(t *testing.T) {
	s := newTestStore(t)
	s.AddBookmark(model.NewBookmarkParams{URL: "https://example.com", Title: "Existing"})

	c := NewCommitter(s, 0, nil)
	summary := c.Commit([]Record{
		{URL: "https://example.com", Title: "Same again"},
	}, CommitOptions{})

	if summary.Imported != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want the duplicate imported", summary)
	}
}

func TestCommit_ReportsProgress(t *testing.T) {
	s := newTestStore(t)
	c := NewCommitter(s, 0, nil)

	records := make([]Record, 25)
	for i := range records {
		records[i] = Record{URL: "https://example.com/" + string(rune('a'+i)), Title: "x"}
	}

	var percents []int
	c.Commit(records, CommitOptions{Progress: func(p int) { percents = append(percents, p) }})

	if len(percents) != 3 {
		t.Fatalf("expected 3 progress callbacks for 25 records in batches of 10, got %v", percents)
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("final progress = %d, want 100", percents[len(percents)-1])
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress went backwards: %v", percents)
		}
	}
}

func TestCommit_FailedRecordsCounted(t *testing.T) {
	s := newTestStore(t)
	c := NewCommitter(s, 0, nil)

	summary := c.Commit([]Record{
		{URL: "https://good.example.com", Title: "Good"},
		{URL: "not a url", Title: "Bad"},
	}, CommitOptions{})

	if summary.Imported != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 1 imported / 1 failed", summary)
	}
}

func TestParseSeed(t *testing.T) {
	const doc = `
bookmarks:
  - url: https://go.dev
    title: The Go Programming Language
    folder: Dev
  - url: https://example.com
  - title: No URL at all
  - url: ftp://old.example.com
    title: FTP
`
	res, err := ParseSeed(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %+v", res.Records)
	}
	if res.Records[0].FolderPath != "Dev" {
		t.Errorf("FolderPath = %q, want Dev", res.Records[0].FolderPath)
	}
	if res.Records[1].Title != "https://example.com" {
		t.Errorf("missing title should fall back to URL, got %q", res.Records[1].Title)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("expected warnings for the url-less and ftp entries, got %v", res.Warnings)
	}
	if len(res.Folders) != 1 || res.Folders[0] != "Dev" {
		t.Errorf("Folders = %v, want [Dev]", res.Folders)
	}
}

func TestParseSeed_Malformed(t *testing.T) {
	if _, err := ParseSeed(strings.NewReader("bookmarks: [")); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}
