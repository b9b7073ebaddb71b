package models

import "errors"

// Error taxonomy. Callers match with errors.Is; lower layers wrap these
// with fmt.Errorf("%w: ...") to add detail.
var (
	// ErrInvalidConfiguration covers bad chunking or retrieval parameters.
	// Fatal at startup.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument covers bad per-call parameters such as k <= 0.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmbeddingUnavailable means the embedding capability could not be
	// reached within the configured retry budget. Aborts the ingestion run;
	// the previously published index stays in place.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")

	// ErrGenerationUnavailable means the generation capability failed at
	// query time. Surfaced to the caller; no answer is fabricated.
	ErrGenerationUnavailable = errors.New("generation capability unavailable")
)
