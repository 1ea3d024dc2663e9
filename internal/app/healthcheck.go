package app

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// healthHandler reports liveness while a long evaluation run is in flight.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startHealthcheckServer binds the health check HTTP server and serves it in
// the background. Binding happens synchronously so a port conflict surfaces
// before the evaluation starts; the returned listener's Close stops the
// server.
func (a *App) startHealthcheckServer(port int) (net.Listener, error) {
	a.logger.Debug("Configuring health check server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to start health check server: %w", err)
	}

	boundPort := ln.Addr().(*net.TCPAddr).Port
	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost:%d/health", boundPort))
		if err := http.Serve(ln, mux); err != nil && !errors.Is(err, net.ErrClosed) {
			a.logger.Error("Health check server failed", "error", err)
		}
	}()

	return ln, nil
}
