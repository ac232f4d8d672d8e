package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	List  ListConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig holds record list dimension configuration.
type ListConfig struct {
	// HeightReduction is subtracted from terminal height for list content.
	// Accounts for: header (2) + stage bar (1) + status line (1) + help bar (2) = 6
	HeightReduction int

	// MinHeight is the minimum list height.
	MinHeight int

	// ContentPadding is subtracted from terminal width for item rendering.
	ContentPadding int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	FilterCharLimit int
	PathCharLimit   int

	// Display widths
	FilterWidth int
	PathWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		List: ListConfig{
			HeightReduction: 6, // header (2) + stage bar (1) + status line (1) + help bar (2)
			MinHeight:       5,
			ContentPadding:  4,
		},
		Input: InputConfig{
			FilterCharLimit: 50,
			PathCharLimit:   200,
			FilterWidth:     30,
			PathWidth:       40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
