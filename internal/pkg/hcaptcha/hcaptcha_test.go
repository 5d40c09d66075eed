package hcaptcha

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		if r.PostForm.Get("response") == "good" {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	orig := VerifyURL
	VerifyURL = srv.URL
	t.Cleanup(func() { VerifyURL = orig })
	t.Setenv("HCAPTCHA_SECRET", "s3cret")

	ok, err := Verify("good")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("bad")
	assert.False(t, ok)
	assert.EqualError(t, err, "hCaptcha validation failed: invalid-input-response")

	_, err = Verify("")
	assert.ErrorIs(t, err, ErrEmptyToken)
}
