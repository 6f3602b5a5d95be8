package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRequiresServiceName(t *testing.T) {
	_, _, err := Init(context.Background(), "", "", zerolog.Nop())
	require.Error(t, err)
}

func TestInitWithoutEndpoint(t *testing.T) {
	shutdown, middleware, err := Init(context.Background(), "washrelay", "", zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, middleware)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewTraceExporter(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "host and port", endpoint: "collector:4318"},
		{name: "http url with path", endpoint: "http://collector:4318/v1/traces"},
		{name: "https url", endpoint: "https://collector.example.com"},
		{name: "scheme without host", endpoint: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := newTraceExporter(context.Background(), tt.endpoint)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, exporter)
			_ = exporter.Shutdown(context.Background())
		})
	}
}

func TestMiddlewareLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := Middleware("washrelay", logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/serviceRequest", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["message"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/serviceRequest", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}

func TestTransportDefaultsBase(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	client := &http.Client{Transport: Transport(nil)}
	resp, err := client.Get(upstream.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
