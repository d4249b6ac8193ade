package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethdenver2026/relay/internal/admin"
	"github.com/ethdenver2026/relay/internal/store"
	"github.com/ethdenver2026/relay/internal/types"
)

type stubCoordinator struct {
	hash string
	err  error
}

func (c *stubCoordinator) Submit(context.Context, types.Authorization) (string, error) {
	return c.hash, c.err
}

func newTestServer(t *testing.T) (*Server, *admin.TokenIssuer) {
	t.Helper()
	s := store.New("root-admin")
	tokens := admin.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	adminSurface := admin.New(s, nil, nil, nil)
	srv := NewServer(&stubCoordinator{hash: "0xdeadbeef"}, s, adminSurface, tokens, nil, nil)
	return srv, tokens
}

func TestHandleSubmit_OK(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"asset_id":"usdc","from":"0x0100000000000000000000000000000000000000","to":"0x0200000000000000000000000000000000000000","value":"100","valid_after":0,"valid_before":9999999999,"nonce":"0x0100000000000000000000000000000000000000000000000000000000000000","sig_v":27,"sig_r":"0x0000000000000000000000000000000000000000000000000000000000000000","sig_s":"0x0000000000000000000000000000000000000000000000000000000000000000"}`
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0xdeadbeef", resp.TxHash)
}

func TestAdminHandler_RejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/pause", strings.NewReader(`{"paused":true}`))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminHandler_AcceptsValidToken(t *testing.T) {
	srv, tokens := newTestServer(t)
	token, err := tokens.IssueToken("root-admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/pause", strings.NewReader(`{"paused":true}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminHandler_RejectsNonAdminPrincipal(t *testing.T) {
	srv, tokens := newTestServer(t)
	token, err := tokens.IssueToken("someone-else")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/pause", strings.NewReader(`{"paused":true}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleInfo_ReportsConfiguredState(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp infoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0", resp.ThresholdWei)
}
