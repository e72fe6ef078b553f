package llm

// TextStream represents an incremental text response from the provider.
type TextStream interface {
	// Next advances to the next chunk of text.
	// Returns false when the stream is complete or an error occurs.
	Next() bool

	// Text returns the current chunk.
	// Should only be called after Next() returns true.
	Text() string

	// Err returns any error that occurred during streaming.
	Err() error

	// Close closes the stream and releases resources.
	Close() error
}
