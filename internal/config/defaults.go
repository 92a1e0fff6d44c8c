package config

// Default values for the conventional source tree layout.
const (
	DefaultSource         = "src"
	DefaultDestination    = "public"
	DefaultContentFile    = "index.md"
	DefaultMetaFile       = "meta.json"
	DefaultTemplateFile   = "template.html"
	DefaultStylesheetFile = "style.css"
	DefaultIndexFile      = "index.html"
	DefaultAnchorPrefix   = "tut-"
	DefaultTableClass     = "table"
	DefaultNoHighlight    = "nohighlight"
	DefaultFallbackLang   = "markup"
	DefaultHighlightStyle = "github"
	DefaultDateLayout     = "January 2, 2006"
	DefaultSiteTitle      = "Tutorials"
	DefaultServePort      = 8080
)

// DefaultSharedDirs are the reserved shared-asset directories (never tutorial units).
var DefaultSharedDirs = []string{"img", "lib"}

func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Destination == "" {
		cfg.Destination = DefaultDestination
	}

	b := &cfg.Build
	setDefault(&b.ContentFile, DefaultContentFile)
	setDefault(&b.MetaFile, DefaultMetaFile)
	setDefault(&b.TemplateFile, DefaultTemplateFile)
	setDefault(&b.StylesheetFile, DefaultStylesheetFile)
	setDefault(&b.IndexFile, DefaultIndexFile)
	if b.SharedDirs == nil {
		b.SharedDirs = append([]string(nil), DefaultSharedDirs...)
	}
	if b.MissingSource == "" {
		b.MissingSource = MissingSourceSkip
	}

	r := &cfg.Render
	setDefault(&r.AnchorPrefix, DefaultAnchorPrefix)
	setDefault(&r.TableClass, DefaultTableClass)
	setDefault(&r.NoHighlight, DefaultNoHighlight)
	setDefault(&r.FallbackLanguage, DefaultFallbackLang)
	setDefault(&r.HighlightStyle, DefaultHighlightStyle)
	setDefault(&r.DateLayout, DefaultDateLayout)
	setDefault(&r.SiteTitle, DefaultSiteTitle)

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = DefaultServePort
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
