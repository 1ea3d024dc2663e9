package app

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/evalrungo/internal/config"
)

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, _ := newTestApp(t, &config.Options{Mode: config.ModeRun, Model: "foo"}, &fakeRunner{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	// --- Act ---
	a.healthHandler(rec, req)

	// --- Assert ---
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK\n", rec.Body.String())
}

func TestStartHealthcheckServer(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, &config.Options{Mode: config.ModeRun, Model: "foo"}, &fakeRunner{})

	// Port 0 binds an ephemeral port, so parallel test runs cannot collide.
	ln, err := a.startHealthcheckServer(0)
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "OK\n", string(body))
}
