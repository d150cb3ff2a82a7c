package sqlsvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/run", r.URL.Path)

		var req struct {
			Instruction string `json:"instruction"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Instruction, "2026-01")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"sql":  "SELECT count(*) FROM payroll",
			"rows": [][]any{{26, 92082741, 7611337, 0}},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	res, err := client.Run(t.Context(), "2026-01 급여 집계")
	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*) FROM payroll", res.SQL)
	require.Len(t, res.Rows, 1)
	assert.Empty(t, res.Err)
	assert.False(t, res.Failed())
}

func TestClient_DomainErrorStaysInResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": "relation \"payroll\" does not exist",
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	res, err := client.Run(t.Context(), "급여 집계")
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Err, "does not exist")
}

func TestClient_HTTPErrorIsPlumbingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Run(t.Context(), "급여 집계")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_UnreachableService(t *testing.T) {
	client := New("http://127.0.0.1:1")
	_, err := client.Run(t.Context(), "급여 집계")
	require.Error(t, err)
}
