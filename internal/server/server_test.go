package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birrflow/birrflow/internal/lifecycle"
	"github.com/birrflow/birrflow/internal/model"
	"github.com/birrflow/birrflow/internal/parser"
	"github.com/birrflow/birrflow/internal/storage"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	srv := New(parser.NewEngine(), lifecycle.NewManager(store), store, NewMetrics())
	return srv.Router()
}

func postTransfer(t *testing.T, router http.Handler, userID, text string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"user_id": userID, "text": text})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateTransfer(t *testing.T) {
	router := newTestServer(t)

	rec := postTransfer(t, router, "user-1",
		"Telebirr: You have received ETB 150.50 from +251911223344. Transaction ID: TX99X")
	require.Equal(t, http.StatusCreated, rec.Code)

	var record model.TransferRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "Telebirr", record.BankName)
	assert.Equal(t, 150.50, record.Amount)
	assert.Equal(t, "TX99X", record.Reference)
	assert.Equal(t, model.StatusPendingVerification, record.Status)
}

func TestCreateTransfer_Unparseable(t *testing.T) {
	router := newTestServer(t)

	rec := postTransfer(t, router, "user-1", "Your OTP code is 123456")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestCreateTransfer_Duplicate(t *testing.T) {
	router := newTestServer(t)
	message := "Telebirr: You have received ETB 150.50 from +251911223344. Transaction ID: TX99X"

	require.Equal(t, http.StatusCreated, postTransfer(t, router, "user-1", message).Code)
	assert.Equal(t, http.StatusConflict, postTransfer(t, router, "user-1", message).Code)

	// A different user may record the same reference.
	assert.Equal(t, http.StatusCreated, postTransfer(t, router, "user-2", message).Code)
}

func TestCreateTransfer_BadRequest(t *testing.T) {
	router := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"user_id": `},
		{"missing user", `{"text": "ETB 100 credited"}`},
		{"missing text", `{"user_id": "user-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transfers", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListTransfers(t *testing.T) {
	router := newTestServer(t)

	messages := []string{
		"Telebirr: You have received ETB 150.50 from +251911223344. Transaction ID: TX1",
		"Telebirr: You have received ETB 200.00 from +251911223344. Transaction ID: TX2",
	}
	for _, m := range messages {
		require.Equal(t, http.StatusCreated, postTransfer(t, router, "user-1", m).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/transfers?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listTransfersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Transfers, 2)
	assert.Equal(t, 2, resp.Total)

	// Status filter narrows the result.
	req = httptest.NewRequest(http.MethodGet, "/api/transfers?user_id=user-1&status=verified", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Transfers)
}

func TestListTransfers_Validation(t *testing.T) {
	router := newTestServer(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing user", "/api/transfers"},
		{"bad status", "/api/transfers?user_id=user-1&status=nope"},
		{"bad date", "/api/transfers?user_id=user-1&start_date=12-31-2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTransition(t *testing.T) {
	router := newTestServer(t)

	rec := postTransfer(t, router, "user-1",
		"Telebirr: You have received ETB 150.50 from +251911223344. Transaction ID: TX99X")
	require.Equal(t, http.StatusCreated, rec.Code)

	patch := func(reference, status string) *httptest.ResponseRecorder {
		body, err := json.Marshal(map[string]string{"user_id": "user-1", "status": status})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPatch, "/api/transfers/"+reference, bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec = patch("TX99X", "verified")
	require.Equal(t, http.StatusOK, rec.Code)

	var record model.TransferRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, model.StatusVerified, record.Status)

	// Terminal records reject further transitions.
	assert.Equal(t, http.StatusConflict, patch("TX99X", "fraud").Code)
	// Unknown references are a 404.
	assert.Equal(t, http.StatusNotFound, patch("MISSING", "verified").Code)
}

func TestStats(t *testing.T) {
	router := newTestServer(t)

	rec := postTransfer(t, router, "user-1",
		"Telebirr: You have received ETB 150.50 from +251911223344. Transaction ID: TX99X")
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/transfers/stats/user-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot model.AggregateSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, 1, snapshot.TotalTransfers)
	assert.Equal(t, 150.50, snapshot.TotalAmount)
	assert.Equal(t, 1, snapshot.PendingCount)
	require.Len(t, snapshot.TopBanks, 1)
	assert.Equal(t, "Telebirr", snapshot.TopBanks[0].BankName)
}

func TestStats_EmptyUser(t *testing.T) {
	router := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transfers/stats/nobody", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot model.AggregateSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Zero(t, snapshot.TotalTransfers)
	assert.Empty(t, snapshot.TopBanks)
}

func TestHealthzAndMetrics(t *testing.T) {
	router := newTestServer(t)

	for _, target := range []string{"/healthz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}
