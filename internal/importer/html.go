package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// ParseHTML parses Netscape bookmark HTML and returns one record per
// bookmark, with the folder hierarchy captured as path segments. source
// labels where the export came from (e.g. "chrome", "firefox").
func ParseHTML(r io.Reader, source string) ([]model.Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var records []model.Record

	// Track the current folder path for hierarchy
	var pathStack []string
	var pendingFolder string // folder waiting to be pushed on next DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get name from text content
				if name := getTextContent(n); name != "" {
					pendingFolder = name
				}
				return // Don't recurse into H3

			case "a":
				// Bookmark definition
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				// Parse ADD_DATE timestamp
				var createdAt *time.Time
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						t := time.Unix(ts, 0)
						createdAt = &t
					}
				}

				records = append(records, model.Record{
					ID:        model.GenerateUUID(),
					Title:     title,
					URL:       href,
					Path:      model.ClonePath(pathStack),
					CreatedAt: createdAt,
					Source:    source,
				})
				return // Don't recurse into A

			case "dl":
				// Definition list - marks folder contents
				// If we have a pending folder, push it now
				pushed := false
				if pendingFolder != "" {
					pathStack = append(pathStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}

				// Process children
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				// Pop if we pushed
				if pushed {
					pathStack = pathStack[:len(pathStack)-1]
				}
				return // Don't recurse further, we handled children
			}
		}

		// Recurse into children
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return records, nil
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
