package convert

import (
	"errors"

	"github.com/dgallion1/docblocks/internal/transform"
)

var (
	// ErrFrontMatter marks front-matter that is not a YAML mapping.
	ErrFrontMatter = errors.New("invalid front matter")
	// ErrMarkdown marks a failure of the Markdown engine.
	ErrMarkdown = errors.New("markdown conversion failed")
	// ErrSkeleton marks a failure to build or serialize the page tree.
	ErrSkeleton = errors.New("page skeleton failed")
	// ErrFragmentWrite marks a fragment that could not be persisted.
	ErrFragmentWrite = errors.New("fragment write failed")
	// ErrLabelLookup marks a label lookup failure other than a missing label.
	ErrLabelLookup = transform.ErrLabelLookup
)
