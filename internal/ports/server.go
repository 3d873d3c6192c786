package ports

// Server is a long-running listener owned by a binary's main loop
type Server interface {
	// Start begins serving. It returns once the listener is bound.
	Start() error

	// Stop gracefully drains in-flight requests and releases the listener
	Stop() error
}
