package transform

import (
	"errors"

	"github.com/dgallion1/docblocks/internal/labels"
)

// ErrLabelLookup wraps label lookup failures other than a missing label.
var ErrLabelLookup = errors.New("label lookup failed")

func isNotFound(err error) bool {
	return errors.Is(err, labels.ErrNotFound)
}
