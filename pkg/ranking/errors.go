package ranking

import "errors"

// ErrEmptyQuery reports that a scorer was invoked with nothing to rank by:
// no query terms for the text model, or no examples for the example model.
// It is reported to the caller, never silently corrected.
var ErrEmptyQuery = errors.New("empty query")
