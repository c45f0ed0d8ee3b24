// Package api provides the HTTP server for ingesting, searching and
// querying the basecamp knowledge engine.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string
}
