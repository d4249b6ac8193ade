package rpcoracle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethdenver2026/relay/internal/types"
)

func jsonRPCServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetBalance_ParsesHexResult(t *testing.T) {
	srv := jsonRPCServer(t, `{"jsonrpc":"2.0","id":1,"result":"0x64"}`)
	c := NewClient(srv.URL, time.Second)

	balance, err := c.GetBalance(context.Background(), types.Address{})
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Int64())
}

func TestCall_ApplicationErrorSurfacesAsRPCApplication(t *testing.T) {
	srv := jsonRPCServer(t, `{"jsonrpc":"2.0","id":1,"error":{"code":3,"message":"execution reverted","data":"0x1234"}}`)
	c := NewClient(srv.URL, time.Second)

	_, err := c.EthCall(context.Background(), CallMsg{})
	require.Error(t, err)
	var appErr *RPCApplication
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 3, appErr.Code)
	assert.Equal(t, []byte{0x12, 0x34}, appErr.Data)
}

func TestCall_NonJSONResponseIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)

	_, err := c.EthCall(context.Background(), CallMsg{})
	require.Error(t, err)
	var transportErr *RPCTransport
	assert.ErrorAs(t, err, &transportErr)
}

func TestSendRawTransaction_ParsesTxHash(t *testing.T) {
	srv := jsonRPCServer(t, `{"jsonrpc":"2.0","id":1,"result":"0x0100000000000000000000000000000000000000000000000000000000000000"}`)
	c := NewClient(srv.URL, time.Second)

	h, err := c.SendRawTransaction(context.Background(), []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), h[0])
}

func TestIsSoftSuccess_MatchesAlreadyKnown(t *testing.T) {
	err := &RPCApplication{Code: -32000, Message: "already known"}
	assert.True(t, IsSoftSuccess(err))
}

func TestIsSoftSuccess_MatchesNonceTooLow(t *testing.T) {
	err := &RPCApplication{Code: -32000, Message: "nonce too low"}
	assert.True(t, IsSoftSuccess(err))
}

func TestIsSoftSuccess_RejectsUnrelatedError(t *testing.T) {
	err := &RPCApplication{Code: 3, Message: "execution reverted"}
	assert.False(t, IsSoftSuccess(err))
}

func TestIsSoftSuccess_RejectsNonApplicationError(t *testing.T) {
	assert.False(t, IsSoftSuccess(&RPCTransport{Reason: "timeout"}))
}
