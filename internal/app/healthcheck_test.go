package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthMux(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{GraphPath: "unused"})
	require.NoError(t, err)
	a := NewApp(io.Discard, io.Discard, cfg)
	a.graph.Inject(map[string]any{"x": 1.0, "name": "grid"})
	a.publish()
	// Unpublished changes stay invisible to the server.
	a.graph.Inject(map[string]any{"x": 2.0})

	srv := httptest.NewServer(a.healthMux())
	defer srv.Close()

	tests := []struct {
		path        string
		wantBody    string
		contentType string
	}{
		{path: "/health", wantBody: "OK\n"},
		{path: "/scope", wantBody: `{"name":"grid","x":1}`, contentType: "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
				assert.JSONEq(t, tt.wantBody, string(body))
			} else {
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestHealthCheckServer_DisabledByDefault(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{GraphPath: "unused"})
	require.NoError(t, err)
	a := NewApp(io.Discard, io.Discard, cfg)

	a.healthCheckServer()
	assert.Nil(t, a.httpServer)
	assert.NoError(t, a.closeHealthCheckServer())
}
