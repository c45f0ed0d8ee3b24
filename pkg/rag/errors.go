package rag

import (
	"errors"

	"github.com/summitchronicles/basecamp/pkg/cache"
)

var (
	// ErrValidation marks malformed ingestion or query input. It is
	// reported immediately and never reaches a provider.
	ErrValidation = errors.New("validation failed")

	// ErrProvider marks a failed or timed-out embedding or generation
	// call. It is surfaced with the underlying cause and never retried
	// here; retry policy belongs to the caller.
	ErrProvider = errors.New("provider call failed")

	// ErrCacheWrite marks a failed durable write of the embedding cache.
	// It is logged and non-fatal; in-memory state stays valid.
	ErrCacheWrite = cache.ErrWrite
)
