package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server. Write timeout stays above the handler timeout so
// an admin run that hits its deadline can still write its error response.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
