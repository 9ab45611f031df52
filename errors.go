package main

import "errors"

var (
	// ErrInvalidConfig is returned for bad chunking parameters or an empty
	// search query, always before any provider or store call is made.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSearch wraps any embedding or store failure during retrieval.
	ErrSearch = errors.New("search failed")
)
