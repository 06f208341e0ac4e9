package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteErrorResponse(rr, "App not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"App not found"}`, rr.Body.String())
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	type body struct {
		DeviceID string `json:"device_id"`
	}

	tests := []struct {
		name    string
		payload string
		want    string
		wantErr string
	}{
		{name: "object", payload: `{"device_id":"abc"}`, want: "abc"},
		{name: "unknown fields ignored", payload: `{"device_id":"abc","extra":1}`, want: "abc"},
		{name: "empty body", payload: "", want: ""},
		{name: "not json", payload: "device_id=abc", wantErr: "invalid JSON body"},
		{name: "wrong type", payload: `{"device_id":1}`, wantErr: "invalid JSON body"},
		{name: "trailing data", payload: `{"device_id":"a"}{"device_id":"b"}`, wantErr: "unexpected data"},
		{name: "too large", payload: `{"device_id":"` + strings.Repeat("x", MaxRequestBodySize) + `"}`,
			wantErr: "exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var got body
			err := DecodeJSONBody(httptest.NewRecorder(), req, &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.DeviceID)
		})
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:52311"
	assert.Equal(t, "198.51.100.4", ClientIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientIP(req))
}

func TestWriteJSONResponse(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteJSONResponse(rr, map[string]string{"download_url": "https://x/api/downloads/t"}, http.StatusOK)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "https://x/api/downloads/t", got["download_url"])
}
