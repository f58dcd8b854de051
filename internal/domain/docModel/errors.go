package docModel

import "errors"

// Error kinds the pipeline distinguishes. Scope misses are deliberately NOT
// errors - an empty chunk set means "not processed yet" and callers handle it
// as a normal outcome.
var (
	//contract violations: empty content where content is required, or a
	//vector whose dimensionality does not match the corpus
	ErrInvalidInput = errors.New("invalid input")

	//an embedding or generation call failed or timed out
	ErrProviderUnavailable = errors.New("provider unavailable")

	//the all-or-nothing chunk replace cannot be guaranteed; the whole
	//processing run must abort rather than proceed
	ErrPartialWriteRisk = errors.New("partial write risk")
)
