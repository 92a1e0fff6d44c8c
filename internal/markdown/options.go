package markdown

// Options configures the converter.
type Options struct {
	// AnchorPrefix is prepended to every generated heading ID.
	AnchorPrefix string
	// TableClass is set as the class attribute of every <table>. Empty disables it.
	TableClass string
}
