package convert

import "errors"

// ErrExtraction indicates the model returned empty or non-conforming output
// during the structured extraction phase.
var ErrExtraction = errors.New("extraction failed")

// ErrRefinement indicates the model returned empty or non-conforming output
// during the style refinement phase.
var ErrRefinement = errors.New("refinement failed")

// ErrNotFound indicates the conversion does not exist.
var ErrNotFound = errors.New("conversion not found")

// ErrInvalidInput indicates the caller supplied invalid parameters.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotReady indicates the conversion has not completed yet, so dependent
// operations (export, text generation) cannot run.
var ErrNotReady = errors.New("conversion not complete")
