package okx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptosift/cryptosift/internal/crypto"
	"github.com/cryptosift/cryptosift/internal/domain"
	"github.com/cryptosift/cryptosift/internal/pacing"
	"github.com/cryptosift/cryptosift/internal/transport"
)

func newTestClient(srvURL string) *Client {
	auth := &crypto.HMACAuth{Key: "key", Secret: "secret", Passphrase: "pass"}
	httpClient := transport.NewClient(
		transport.WithTimeout(5*time.Second),
		transport.WithMaxRetries(0),
		transport.WithBackoffBase(time.Millisecond),
	)
	return NewClient(srvURL, auth, httpClient, pacing.NewPacer(0))
}

func TestTickerParsesLastPrice(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		assert.Equal(t, "/api/v5/market/ticker", r.URL.Path)
		assert.Equal(t, "BTC-USDT", r.URL.Query().Get("instId"))
		io.WriteString(w, `{"code":"0","msg":"","data":[{"instId":"BTC-USDT","last":"64250.5"}]}`)
	}))
	defer srv.Close()

	last, err := newTestClient(srv.URL).Ticker(context.Background(), "BTC-USDT")

	require.NoError(t, err)
	assert.Equal(t, 64250.5, last)
	assert.Equal(t, "key", gotHeaders.Get("OK-ACCESS-KEY"))
	assert.Equal(t, "pass", gotHeaders.Get("OK-ACCESS-PASSPHRASE"))
	assert.NotEmpty(t, gotHeaders.Get("OK-ACCESS-SIGN"))
	assert.NotEmpty(t, gotHeaders.Get("OK-ACCESS-TIMESTAMP"))
}

func TestTickerNonZeroCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Ticker(context.Background(), "NOPE-USDT")

	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestTickerEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"code":"0","msg":"","data":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Ticker(context.Background(), "BTC-USDT")

	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestTickerMalformedPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"code":"0","msg":"","data":[{"instId":"BTC-USDT","last":"n/a"}]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Ticker(context.Background(), "BTC-USDT")

	assert.ErrorIs(t, err, domain.ErrBadResponse)
}
