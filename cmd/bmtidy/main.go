package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmtidy/internal/ai"
	"github.com/nikbrunner/bmtidy/internal/aicache"
	"github.com/nikbrunner/bmtidy/internal/config"
	"github.com/nikbrunner/bmtidy/internal/exporter"
	"github.com/nikbrunner/bmtidy/internal/importer"
	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/picker"
	"github.com/nikbrunner/bmtidy/internal/search"
	"github.com/nikbrunner/bmtidy/internal/storage"
	"github.com/nikbrunner/bmtidy/internal/tui"
	"github.com/nikbrunner/bmtidy/internal/workflow"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: bmtidy import <file.html>\n")
				os.Exit(1)
			}
			runImport(os.Args[2])
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run the cleanup workflow TUI
	runTUI()
}

func printHelp() {
	help := `bmtidy - AI-assisted bookmark cleanup

Usage:
  bmtidy                Open the interactive cleanup workflow
  bmtidy <query>        Quick search → select → open
  bmtidy import <file>  Import bookmarks from HTML
  bmtidy export [path]  Export bookmarks to HTML
  bmtidy help           Show this help

Workflow stages (tab/shift+tab to switch):
  1 Review    Select and delete bookmarks, run AI analysis
  2 Organize  Create folders and move bookmarks, AI folder suggestions
  3 Preview   Review pending changes and export

Review keybindings:
  j/k gg/G    Move / jump
  space a A   Toggle select / select visible / deselect all
  d           Delete selected
  r           Run AI analysis
  x           Select all AI delete recommendations
  y/n         Accept / reject recommendation under cursor
  /           Filter
  Y           Copy URL
  u           Undo

Organize keybindings:
  o           AI folder suggestions
  enter       Apply suggestion under cursor
  f           Create folder
  m           Move selected to folder

Configuration:
  ~/.config/bmtidy/config.yaml, BMTIDY_* environment variables.
  AI requires ANTHROPIC_API_KEY, OPENAI_API_KEY or OPENROUTER_API_KEY.

Data Storage:
  ~/.config/bmtidy/bmtidy.db
`
	fmt.Print(help)
}

// openStorage loads config and opens the database.
func openStorage() (*config.Config, *storage.SQLiteStorage) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	return cfg, store
}

// newAnalyzer wires the AI stack, or returns nil when no provider is
// configured. The TUI degrades to manual cleanup in that case.
func newAnalyzer(cfg *config.Config) (*ai.Analyzer, *aicache.Cache) {
	provider, err := cfg.NewProvider()
	if err != nil {
		return nil, nil
	}

	tracker := ai.NewUsageTracker(cfg.UsageLimits())
	pipeline := ai.NewPipeline(provider, tracker, ai.PipelineOptions{
		CostPerMTokIn:  cfg.AI.CostPerMTokIn,
		CostPerMTokOut: cfg.AI.CostPerMTokOut,
	})

	cache := aicache.New(cfg.CachePath())
	return ai.NewAnalyzer(pipeline, cache, cfg.AI.BatchSize, cfg.CacheTTL()), cache
}

// runTUI runs the full cleanup workflow.
func runTUI() {
	cfg, store := openStorage()
	defer store.Close()

	records, err := store.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("No bookmarks yet. Run `bmtidy import <file.html>` first.")
		return
	}

	session := resumeOrStartSession(store, records)
	analyzer, cache := newAnalyzer(cfg)

	app := tui.NewApp(tui.AppParams{Session: session, Analyzer: analyzer})
	p := tea.NewProgram(app, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}

	finalApp := finalModel.(tui.App)
	if finalApp.Exported() {
		if err := store.DeleteSession(finalApp.Session().ID()); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing session: %v\n", err)
		}
	} else {
		saveSession(store, finalApp.Session())
	}

	if cache != nil {
		if err := cache.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving AI cache: %v\n", err)
		}
	}
}

// resumeOrStartSession picks up the latest saved session if one exists,
// otherwise starts fresh over the stored records.
func resumeOrStartSession(store *storage.SQLiteStorage, records []model.Record) *workflow.Session {
	data, err := store.LoadLatestSession()
	if err == nil {
		session, err := workflow.Load(store, data)
		if err == nil {
			return session
		}
		fmt.Fprintf(os.Stderr, "Warning: could not resume session: %v\n", err)
	} else if !errors.Is(err, storage.ErrNoSession) {
		fmt.Fprintf(os.Stderr, "Warning: could not read saved session: %v\n", err)
	}

	session, err := workflow.New(store, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting session: %v\n", err)
		os.Exit(1)
	}
	return session
}

func saveSession(store *storage.SQLiteStorage, session *workflow.Session) {
	data, err := json.Marshal(session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error serializing session: %v\n", err)
		return
	}
	if err := store.SaveSession(session.ID(), data); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving session: %v\n", err)
	}
}

// runQuickSearch performs a fuzzy search and opens the selected bookmark.
func runQuickSearch(query string) {
	_, store := openStorage()
	defer store.Close()

	records, err := store.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	results := search.FuzzySearch(records, query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		os.Exit(0)
	}

	var selected *model.Record

	if len(results) == 1 {
		// Single result - select it directly
		selected = results[0].Record
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		// Multiple results - show picker
		p := picker.New(results, query)
		program := tea.NewProgram(p)
		finalModel, err := program.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running picker: %v\n", err)
			os.Exit(1)
		}

		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			os.Exit(0)
		}
		selected = finalPicker.SelectedRecord()
	}

	if selected == nil {
		os.Exit(0)
	}

	openURL(selected.URL)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

// runImport handles the import subcommand.
func runImport(filePath string) {
	_, store := openStorage()
	defer store.Close()

	existing, err := store.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	file, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	incoming, err := importer.ParseHTML(file, "import")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing HTML: %v\n", err)
		os.Exit(1)
	}

	merged, added, skipped := model.Merge(existing, incoming)

	if err := store.InsertAll(merged[len(existing):]); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving bookmarks: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d bookmarks", added)
	if skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", skipped)
	}
	fmt.Println()
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting default export path: %v\n", err)
			os.Exit(1)
		}
	}

	_, store := openStorage()
	defer store.Close()

	records, err := store.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	html := exporter.ExportHTML(records)

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d bookmarks to %s\n", len(records), outputPath)
}
