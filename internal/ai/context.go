package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nikbrunner/bmtidy/internal/model"
)

const maxSampleTitles = 3

// BuildContext generates a compressed representation of the record set
// suitable for AI context: existing folder paths with sample titles.
func BuildContext(records []model.Record) string {
	samples := make(map[string][]string)
	order := []string{}

	for _, r := range records {
		path := model.PathString(r.Path)
		if _, seen := samples[path]; !seen {
			order = append(order, path)
		}
		if len(samples[path]) < maxSampleTitles {
			samples[path] = append(samples[path], r.Title)
		}
	}

	sort.Strings(order)

	var sb strings.Builder
	sb.WriteString("Existing folders (with sample bookmarks):\n")
	for _, path := range order {
		sb.WriteString(path)
		sb.WriteString("\n")

		titles := samples[path]
		quoted := make([]string, len(titles))
		for i, title := range titles {
			quoted[i] = fmt.Sprintf("%q", title)
		}
		sb.WriteString("  - ")
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString("\n")
	}

	return sb.String()
}
