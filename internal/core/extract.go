package core

import "context"

// Extractor is the uniform per-source extraction capability. T is the
// source's normalized record type. A non-nil error indicates a
// structural failure (missing credentials, unreachable backend); item
// failures live in the result's Errors and never abort extraction.
type Extractor[T any] interface {
	Name() string
	Extract(ctx context.Context, params ExtractionParams) ([]T, *ExtractionResult, error)
}
