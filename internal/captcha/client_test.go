package captcha

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubVerifier(t *testing.T, success bool) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-secret", r.PostFormValue("secret"))
		assert.Equal(t, "token-123", r.PostFormValue("response"))
		fmt.Fprintf(w, `{"success": %t}`, success)
	}))
	t.Cleanup(srv.Close)
	return NewWithVerifyURL("test-secret", srv.URL)
}

func TestVerify(t *testing.T) {
	ok, err := stubVerifier(t, true).Verify(context.Background(), "token-123", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = stubVerifier(t, false).Verify(context.Background(), "token-123", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}
