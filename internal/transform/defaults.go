package transform

// Options configure the default transforms.
type Options struct {
	// SiteHost is the host whose absolute links are not treated as external.
	SiteHost string
}

// Default returns every transform of the conversion pipeline.
func Default(opts Options) []Transformer {
	return []Transformer{
		InlineMarkers(),
		ExternalLinks(opts.SiteHost),
		EmptyParagraphs(),

		Badges(),
		Notes(),
		Tables(),
		Images(),
		CodeBlocks(),
		Videos(),
		Accordions(),
		Tabs(),
		ShadeBoxes(),
		Checklists(),

		Breadcrumbs(),
		ArticleMetadata(),
		DocActions(),
		MiniTOC(),
		TOC(),

		NestedBlocks(),
		BlockValidation(),
	}
}

// DefaultPipeline returns the ordered default pipeline.
func DefaultPipeline(opts Options) (*Pipeline, error) {
	return NewPipeline(Default(opts))
}
