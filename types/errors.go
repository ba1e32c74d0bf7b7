package types

import "errors"

// Error taxonomy shared across services. Callers match with errors.Is;
// the concrete cause is carried by wrapping.
var (
	// ErrMissingAPIKey means a provider credential is absent from the
	// environment. Checked at call time, not at startup.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrNotFound covers an unknown job id or a missing input file.
	ErrNotFound = errors.New("not found")

	// ErrProvider is an OCR or LLM call failure. Not retried.
	ErrProvider = errors.New("provider request failed")

	// ErrMalformedOutput means both repair passes over a model reply failed.
	ErrMalformedOutput = errors.New("malformed model output")
)
