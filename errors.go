package main

import "errors"

var (
	// ErrInvalidInput marks malformed or absent input given to the import
	// pipeline or to a manual entry form.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMatchFound is returned by the import flow when the parser found no
	// timetable lines. It is a valid empty result, not a failure.
	ErrNoMatchFound = errors.New("no subjects found")

	ErrPersistence  = errors.New("persistence failure")
	ErrRecognition  = errors.New("recognition failure")
	ErrExport       = errors.New("export failure")
	ErrBlobNotFound = errors.New("blob not found")
	ErrNotReady     = errors.New("schedule store is not ready")
)
