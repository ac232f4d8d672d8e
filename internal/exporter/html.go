package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders records as Netscape bookmark HTML, rebuilding the
// folder tree from each record's path segments. Records sharing a path
// differing only in case land in the same folder (first spelling wins).
func ExportHTML(records []model.Record) string {
	root := &folderNode{}
	for _, r := range records {
		root.insert(r)
	}

	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeNode(&b, root, 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// folderNode is one level of the reconstructed folder tree. Children
// keep first-seen order, matching the input record order.
type folderNode struct {
	name     string
	children []*folderNode
	records  []model.Record
}

func (n *folderNode) insert(r model.Record) {
	node := n
	for _, segment := range r.Path {
		node = node.child(segment)
	}
	node.records = append(node.records, r)
}

func (n *folderNode) child(name string) *folderNode {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	c := &folderNode{name: name}
	n.children = append(n.children, c)
	return c
}

// writeNode recursively writes folders and bookmarks for one tree level.
func writeNode(b *strings.Builder, node *folderNode, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range node.children {
		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)

		writeNode(b, folder, indent+1)

		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}

	for _, r := range node.records {
		if r.CreatedAt != nil {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(r.URL),
				r.CreatedAt.Unix(),
				html.EscapeString(r.Title),
			)
		} else {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\">%s</A>\n",
				prefix,
				html.EscapeString(r.URL),
				html.EscapeString(r.Title),
			)
		}
	}
}
