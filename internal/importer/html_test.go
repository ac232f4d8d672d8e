package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/bmtidy/internal/importer"
	"github.com/nikbrunner/bmtidy/internal/model"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	records, err := importer.ParseHTML(strings.NewReader(html), "chrome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", r.Title)
	}
	if r.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", r.URL)
	}
	if len(r.Path) != 0 {
		t.Errorf("expected root path, got %v", r.Path)
	}
	if r.Source != "chrome" {
		t.Errorf("expected source 'chrome', got %q", r.Source)
	}
	if r.ID == "" {
		t.Error("expected non-empty ID")
	}
}

func TestParseHTML_NestedFolders(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	records, err := importer.ParseHTML(strings.NewReader(html), "chrome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	paths := make(map[string][]string)
	for _, r := range records {
		paths[r.Title] = r.Path
	}

	if !model.SamePath(paths["React Docs"], []string{"Development", "React"}) {
		t.Errorf("React Docs path = %v, want [Development React]", paths["React Docs"])
	}
	if !model.SamePath(paths["GitHub"], []string{"Development"}) {
		t.Errorf("GitHub path = %v, want [Development]", paths["GitHub"])
	}
	if len(paths["Google"]) != 0 {
		t.Errorf("Google path = %v, want root", paths["Google"])
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	records, err := importer.ParseHTML(strings.NewReader(html), "chrome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestParseHTML_Timestamps(t *testing.T) {
	// 1234567890 = Fri Feb 13 2009 23:31:30 UTC
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Test</A>
    <DT><A HREF="https://nodate.com">No Date</A>
</DL><p>`

	records, err := importer.ParseHTML(strings.NewReader(html), "firefox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	expected := time.Unix(1234567890, 0)
	if records[0].CreatedAt == nil || !records[0].CreatedAt.Equal(expected) {
		t.Errorf("expected CreatedAt %v, got %v", expected, records[0].CreatedAt)
	}
	// Missing ADD_DATE stays unknown rather than defaulting to now
	if records[1].CreatedAt != nil {
		t.Errorf("expected nil CreatedAt, got %v", records[1].CreatedAt)
	}
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="https://valid.com" ADD_DATE="1234567890">Valid</A>
</DL><p>`

	records, err := importer.ParseHTML(strings.NewReader(html), "chrome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should skip bookmark without HREF, keep valid one
	if len(records) != 1 {
		t.Fatalf("expected 1 record (skip missing href), got %d", len(records))
	}

	if records[0].Title != "Valid" {
		t.Errorf("expected 'Valid' record, got %q", records[0].Title)
	}
}

func TestParseHTML_UntitledFallsBackToURL(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://example.com"></A>
</DL><p>`

	records, err := importer.ParseHTML(strings.NewReader(html), "chrome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Title != "https://example.com" {
		t.Errorf("expected URL as title fallback, got %q", records[0].Title)
	}
}
