package rnndescent

import "errors"

var (
	// ErrNotBuilt is returned by Search/Reconstruct when called before Add
	// has built a graph.
	ErrNotBuilt = errors.New("rnndescent: index has not been built")
	// ErrEmptyInput is returned by Add when given zero vectors.
	ErrEmptyInput = errors.New("rnndescent: input vector set is empty")
	// ErrTopKTooLarge is returned by Search when topk exceeds Ntotal.
	ErrTopKTooLarge = errors.New("rnndescent: topk exceeds the number of indexed vectors")
	// ErrInvalidConfig is returned by New when dim or a Params field is
	// out of range.
	ErrInvalidConfig = errors.New("rnndescent: invalid configuration")
)
