package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/deviceinfo/internal/orientation"
	"github.com/relabs-tech/deviceinfo/internal/render"
)

func TestWebStateEndpoint(t *testing.T) {
	_, m := startPushManager(t, orientation.Tablet)
	ws := NewWebServer(m)
	defer ws.Close()

	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]string{
		"device":             "tablet",
		"interface":          "portrait",
		"orientation":        "portrait",
		"orientation_detail": "portrait",
		"icon":               "tablet-icon",
		"label":              "Portrait (portrait)",
		"interface_label":    "UI: Portrait",
	}, got)
}

func TestWebIndex(t *testing.T) {
	_, m := startPushManager(t, orientation.Phone)
	ws := NewWebServer(m)
	defer ws.Close()

	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/ws")

	rec = httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebSocketPushesEveryChange(t *testing.T) {
	h, m := startPushManager(t, orientation.Phone)
	ws := NewWebServer(m)
	srv := httptest.NewServer(ws.Handler())
	defer srv.Close()
	defer ws.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() StateView {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var v StateView
		require.NoError(t, conn.ReadJSON(&v))
		return v
	}

	first := read()
	assert.Equal(t, render.PhoneIcon, first.Icon)
	assert.Equal(t, "Portrait (portrait)", first.Label)

	h.emit(orientation.RawInterfacePortrait, orientation.RawDeviceFaceDown)
	h.emit(orientation.RawInterfaceLandscapeLeft, orientation.RawDeviceLandscapeRight)

	assert.Equal(t, "Portrait (faceDown)", read().Label)
	last := read()
	assert.Equal(t, orientation.CoarseLandscape, last.Coarse)
	assert.Equal(t, "Landscape (landscapeRight)", last.Label)
	assert.Equal(t, "UI: Landscape Left", last.InterfaceLabel)
}
