package importer

import (
	"strings"
	"testing"
	"time"
)

const sampleExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
	<DT><A HREF="https://go.dev" ADD_DATE="1704067200">The Go Programming Language</A>
	<DT><H3>Work</H3>
	<DL><p>
		<DT><A HREF="https://github.com">GitHub</A>
		<DT><H3>Projects</H3>
		<DL><p>
			<DT><A HREF="https://pkg.go.dev">Go Packages</A>
		</DL><p>
	</DL><p>
	<DT><A HREF="ftp://old.example.com/files">Old FTP</A>
	<DT><A HREF="javascript:void(0)">Bookmarklet</A>
</DL><p>`

func TestParseHTML(t *testing.T) {
	res, err := ParseHTML(strings.NewReader(sampleExport), 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(res.Records), res.Records)
	}

	first := res.Records[0]
	if first.URL != "https://go.dev" || first.FolderPath != "" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.CreatedAt == nil || !first.CreatedAt.Equal(time.Unix(1704067200, 0)) {
		t.Errorf("ADD_DATE not parsed: %v", first.CreatedAt)
	}

	if got := res.Records[1].FolderPath; got != "Work" {
		t.Errorf("FolderPath = %q, want Work", got)
	}
	if got := res.Records[2].FolderPath; got != "Work/Projects" {
		t.Errorf("nested FolderPath = %q, want Work/Projects", got)
	}
	if res.Records[2].CreatedAt != nil {
		t.Error("record without ADD_DATE should have nil CreatedAt")
	}

	wantFolders := []string{"Work", "Work/Projects"}
	if len(res.Folders) != len(wantFolders) {
		t.Fatalf("Folders = %v, want %v", res.Folders, wantFolders)
	}
	for i, f := range wantFolders {
		if res.Folders[i] != f {
			t.Errorf("Folders[%d] = %q, want %q", i, res.Folders[i], f)
		}
	}

	// The ftp and javascript entries each produce a warning.
	if len(res.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", res.Warnings)
	}
}

func TestParseHTML_TitleFallsBackToURL(t *testing.T) {
	const doc = `<DL><DT><A HREF="https://example.com"></A></DL>`
	res, err := ParseHTML(strings.NewReader(doc), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].Title != "https://example.com" {
		t.Errorf("expected URL as title fallback, got %+v", res.Records)
	}
}

func TestParseHTML_Truncation(t *testing.T) {
	var b strings.Builder
	b.WriteString("<DL>")
	for i := 0; i < 5; i++ {
		b.WriteString(`<DT><A HREF="https://example.com/` + string(rune('a'+i)) + `">x</A>`)
	}
	b.WriteString("</DL>")

	res, err := ParseHTML(strings.NewReader(b.String()), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 3 {
		t.Errorf("expected 3 records under the cap, got %d", len(res.Records))
	}
	if !res.Truncated {
		t.Error("expected Truncated to be set")
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a truncation warning")
	}
}

func TestParseHTML_TruncationStopsTheWalk(t *testing.T) {
	const doc = `<DL><p>
	<DT><A HREF="https://a.example.com">a</A>
	<DT><A HREF="https://b.example.com">b</A>
	<DT><A HREF="ftp://old.example.com/files">c</A>
	<DT><H3>Later</H3>
	<DL><p>
		<DT><A HREF="https://c.example.com">d</A>
	</DL><p>
</DL><p>`

	res, err := ParseHTML(strings.NewReader(doc), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].URL != "https://a.example.com" {
		t.Fatalf("expected only the first record, got %+v", res.Records)
	}
	if !res.Truncated {
		t.Fatal("expected Truncated to be set")
	}
	// Nothing past the cap is scanned: no folder and no non-http warning
	// from the skipped region, just the truncation notice.
	if len(res.Folders) != 0 {
		t.Errorf("folders past the cap should be ignored, got %v", res.Folders)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "more than 1") {
		t.Errorf("expected only the truncation warning, got %v", res.Warnings)
	}
}

func TestParseHTML_NotABookmarkFile(t *testing.T) {
	_, err := ParseHTML(strings.NewReader("<html><body><p>hello</p></body></html>"), 0)
	if err != ErrNotBookmarkFile {
		t.Errorf("expected ErrNotBookmarkFile, got %v", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://Example.com/", "http://example.com"},
		{"http://example.com", "http://example.com"},
		{"https://example.com/path/", "https://example.com/path"},
		{"https://example.com/Path", "https://example.com/Path"},
		{"https://example.com/search?q=Go", "https://example.com/search?q=Go"},
		{"HTTPS://EXAMPLE.COM/A/", "https://example.com/A"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	inputs := []string{
		"http://Example.com/",
		"https://example.com/path/",
		"https://example.com/a/b?x=1#frag",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		if twice := NormalizeURL(once); twice != once {
			t.Errorf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
