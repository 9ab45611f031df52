package store

import "errors"

var (
	// ErrRead is wrapped by every failed store read or similarity query.
	ErrRead = errors.New("store read failed")

	// ErrWrite is wrapped by every failed store insert or delete.
	ErrWrite = errors.New("store write failed")

	// ErrNotFound is returned when a transcript does not exist.
	ErrNotFound = errors.New("transcript not found")
)
