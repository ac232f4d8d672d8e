package tui

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmtidy/internal/ai"
	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/tui/layout"
	"github.com/nikbrunner/bmtidy/internal/workflow"
)

var stageLabels = map[workflow.Stage]string{
	workflow.StageReview:   "1 Review",
	workflow.StageOrganize: "2 Organize",
	workflow.StagePreview:  "3 Preview",
}

func (a App) renderView() string {
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n\n")

	switch a.session.Stage() {
	case workflow.StageReview:
		b.WriteString(a.renderReview())
	case workflow.StageOrganize:
		b.WriteString(a.renderOrganize())
	case workflow.StagePreview:
		b.WriteString(a.renderPreview())
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return a.styles.App.Render(b.String())
}

func (a App) renderHeader() string {
	title := a.styles.Title.Render("bmtidy")

	var tabs []string
	for _, stage := range []workflow.Stage{workflow.StageReview, workflow.StageOrganize, workflow.StagePreview} {
		label := stageLabels[stage]
		if stage == a.session.Stage() {
			tabs = append(tabs, a.styles.StageActive.Render(label))
		} else {
			tabs = append(tabs, a.styles.Stage.Render(label))
		}
	}

	return title + "  " + strings.Join(tabs, " ")
}

// renderReview draws the active record list with selection markers and
// recommendation badges.
func (a App) renderReview() string {
	if len(a.visible) == 0 {
		return a.styles.Empty.Render("No bookmarks. Run `bmtidy import <file.html>` first.")
	}

	height := layout.CalculateListHeight(a.height, a.layout.List)
	width := layout.CalculateItemWidth(a.width, a.layout.List)
	offset := layout.CalculateViewportOffset(a.cursor, len(a.visible), height)

	var b strings.Builder
	end := offset + height
	if end > len(a.visible) {
		end = len(a.visible)
	}

	for i := offset; i < end; i++ {
		b.WriteString(a.renderRecordLine(i, width))
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Status.Render(fmt.Sprintf(
		"%d bookmarks, %d selected", len(a.visible), a.session.SelectedCount())))

	return b.String()
}

func (a App) renderRecordLine(i, width int) string {
	rec := a.visible[i]

	marker := "[ ]"
	if a.session.IsSelected(rec.ID) {
		marker = "[x]"
	}

	badge := ""
	if r := a.session.RecommendationFor(rec.ID); r != nil {
		badge = a.renderBadge(r)
	}

	line := fmt.Sprintf("%s %s  %s", marker, rec.Title, a.styles.URL.Render(rec.URL))
	if len(rec.Path) > 0 {
		line += a.styles.URL.Render("  " + model.PathString(rec.Path))
	}

	text := layout.TruncateStyled(line, width-layout.VisibleLength(badge)-1, a.layout.Text)
	if badge != "" {
		text += " " + badge
	}

	if i == a.cursor {
		return a.styles.ItemCursor.Render("> ") + text
	}
	if a.session.IsSelected(rec.ID) {
		return "  " + a.styles.ItemSelected.Render(text)
	}
	return "  " + a.styles.Item.Render(text)
}

func (a App) renderBadge(r *ai.Recommendation) string {
	label := fmt.Sprintf("%s %d%%", r.Recommendation, r.Confidence)
	switch {
	case r.Rejected:
		label += " (rejected)"
	case r.Accepted:
		label += " (accepted)"
	}

	switch r.Recommendation {
	case ai.RecommendDelete:
		return a.styles.Delete.Render(label)
	case ai.RecommendKeep:
		return a.styles.Keep.Render(label)
	default:
		return a.styles.Review.Render(label)
	}
}

// renderOrganize draws the folder suggestion list.
func (a App) renderOrganize() string {
	suggestions := a.session.Suggestions()
	if len(suggestions) == 0 {
		return a.styles.Empty.Render("No folder suggestions yet. Press o to generate, f to create a folder manually.")
	}

	height := layout.CalculateListHeight(a.height, a.layout.List)
	width := layout.CalculateItemWidth(a.width, a.layout.List)
	offset := layout.CalculateViewportOffset(a.cursor, len(suggestions), height)

	var b strings.Builder
	end := offset + height
	if end > len(suggestions) {
		end = len(suggestions)
	}

	for i := offset; i < end; i++ {
		s := suggestions[i]
		line := fmt.Sprintf("%s  %s  %s",
			s.Name,
			a.styles.URL.Render(model.PathString(s.Path)),
			a.styles.Status.Render(fmt.Sprintf("%d bookmarks", len(s.RecordIDs))))
		if s.Rationale != "" {
			line += "  " + a.styles.URL.Render(s.Rationale)
		}
		text := layout.TruncateStyled(line, width, a.layout.Text)

		if i == a.cursor {
			b.WriteString(a.styles.ItemCursor.Render("> ") + text)
		} else {
			b.WriteString("  " + a.styles.Item.Render(text))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderPreview draws the change summary before export.
func (a App) renderPreview() string {
	summary := a.session.Summary()

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Changes") + "\n\n")

	b.WriteString(fmt.Sprintf("  %s deleted\n", plural(summary.DeletedCount, "bookmark")))
	for _, rec := range summary.Deleted {
		line, _ := layout.TruncateText("    "+rec.Title, a.width-4, a.layout.Text)
		b.WriteString(a.styles.Delete.Render(line) + "\n")
	}

	b.WriteString(fmt.Sprintf("  %s moved\n", plural(summary.MovedCount, "bookmark")))
	for _, mv := range summary.Moves {
		b.WriteString(a.styles.Status.Render(fmt.Sprintf("    %s -> %s",
			model.PathString(mv.FromPath), model.PathString(mv.ToPath))) + "\n")
	}

	b.WriteString(fmt.Sprintf("  %s created\n", plural(summary.CreatedFolderCount, "folder")))
	for _, path := range summary.CreatedFolders {
		b.WriteString(a.styles.Status.Render("    "+model.PathString(path)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Status.Render(fmt.Sprintf(
		"%d bookmarks will be exported. Press e to export.", len(a.session.ExportRecords()))))

	return b.String()
}

func (a App) renderFooter() string {
	var b strings.Builder

	if a.inputMode != inputNone {
		b.WriteString(a.input.View())
		b.WriteString("\n")
	}

	if a.session.Analyzing() {
		b.WriteString(a.spin.View())
		b.WriteString(a.styles.Status.Render(fmt.Sprintf(
			" analyzing %d/%d", a.processed, a.total)))
		b.WriteString("\n")
	} else if a.status != "" {
		if a.statusErr {
			b.WriteString(a.styles.Error.Render(a.status))
		} else {
			b.WriteString(a.styles.Status.Render(a.status))
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Help.Render(a.helpLine()))
	return b.String()
}

func (a App) helpLine() string {
	var keys []string

	switch a.session.Stage() {
	case workflow.StageReview:
		keys = []string{
			"space select", "a all", "d delete", "r analyze",
			"x select deletes", "y/n accept/reject", "u undo", "/ filter",
		}
	case workflow.StageOrganize:
		keys = []string{
			"o suggest", "enter apply", "f new folder", "m move", "u undo",
		}
	case workflow.StagePreview:
		keys = []string{"e export", "u undo"}
	}

	keys = append(keys, "tab stage", "q quit")
	return strings.Join(keys, " · ")
}
