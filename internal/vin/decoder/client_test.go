package decoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetch(t *testing.T) {
	t.Run("requests the expected path and query", func(t *testing.T) {
		var gotPath, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Count":1,"Results":[{"Make":"MakeValue","Model":"ModelValue","ModelYear":"2023","BodyClass":"BodyClassValue"}]}`))
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		raw, err := client.Fetch(context.Background(), "1XPWD40X1ED215307")
		require.NoError(t, err)

		assert.Equal(t, "/1XPWD40X1ED215307", gotPath)
		// modelyear is sent even when empty.
		assert.Equal(t, "format=json&modelyear=", gotQuery)
		require.Len(t, raw.Results, 1)
		require.NotNil(t, raw.Results[0].Make)
		assert.Equal(t, "MakeValue", *raw.Results[0].Make)
	})

	t.Run("returns transport error on unreachable provider", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		_, err := client.Fetch(context.Background(), "1XPWD40X1ED215307")
		require.Error(t, err)

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.True(t, strings.HasPrefix(transportErr.Message, "An error occurred during the request: "))
	})

	t.Run("returns transport error on non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		_, err := client.Fetch(context.Background(), "1XPWD40X1ED215307")
		require.Error(t, err)

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Contains(t, transportErr.Message, "unexpected status 502")
	})

	t.Run("returns transport error on malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client := NewClient(Config{BaseURL: srv.URL})
		_, err := client.Fetch(context.Background(), "1XPWD40X1ED215307")
		require.Error(t, err)

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.True(t, strings.HasPrefix(transportErr.Message, "An unexpected error occurred: "))
	})
}
