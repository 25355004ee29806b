package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, server.URL+"/custom_sms", server.URL+"/bomber", false, server.Client())
	return client, server
}

func TestSendCustom_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/custom_sms", r.URL.Path)
		assert.Equal(t, "5551234567", r.URL.Query().Get("phone"))
		assert.Equal(t, "hello there", r.URL.Query().Get("message"))
		w.Write([]byte(`{"status":"success","api_response":{"message_id":"gw-42"}}`))
	})

	outcome, err := client.SendCustom(context.Background(), "5551234567", "hello there")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "gw-42", outcome.ProviderMessageID)
}

func TestSendCustom_SuccessWithoutMessageID(t *testing.T) {
	// The nested provider response may be an arbitrary shape; the send still
	// counts as delivered.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","api_response":"queued"}`))
	})

	outcome, err := client.SendCustom(context.Background(), "5551234567", "hello")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.ProviderMessageID)
}

func TestSendCustom_GatewayReportsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","api_response":null}`))
	})

	outcome, err := client.SendCustom(context.Background(), "5551234567", "hello")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
}

func TestSendCustom_NonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	outcome, err := client.SendCustom(context.Background(), "5551234567", "hello")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
}

func TestSendCustom_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	outcome, err := client.SendCustom(context.Background(), "5551234567", "hello")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
}

func TestSendCustom_Unreachable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, "http://127.0.0.1:1/custom_sms", "http://127.0.0.1:1/bomber", false, nil)

	_, err := client.SendCustom(context.Background(), "5551234567", "hello")
	assert.Error(t, err)
}

func TestSendOTP_FormatsMessage(t *testing.T) {
	var gotMessage string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMessage = r.URL.Query().Get("message")
		w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, client.SendOTP(context.Background(), "5551234567", "123456"))
	assert.Equal(t, "Your verification code is 123456. It expires in 15 minutes.", gotMessage)
}

func TestSendOTP_Failure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error"}`))
	})

	err := client.SendOTP(context.Background(), "5551234567", "123456")
	assert.ErrorIs(t, err, ErrGatewayFailure)
}

func TestSendBomber_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bomber", r.URL.Path)
		assert.Equal(t, "5551234567", r.URL.Query().Get("mobile"))
		assert.Equal(t, "5", r.URL.Query().Get("repeat"))
		w.Write([]byte(`ok`))
	})

	require.NoError(t, client.SendBomber(context.Background(), "5551234567", 5))
}

func TestSendBomber_NonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.SendBomber(context.Background(), "5551234567", 5)
	assert.ErrorIs(t, err, ErrGatewayFailure)
}
