package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func runAuth(secret string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/notifications/check-all", nil)
	if mutate != nil {
		mutate(req)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	APIKeyAuth(secret)(c)
	return w
}

func TestAPIKeyAuth_BearerToken(t *testing.T) {
	w := runAuth("s3cret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer s3cret")
	})
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_APIKeyHeader(t *testing.T) {
	w := runAuth("s3cret", func(r *http.Request) {
		r.Header.Set("X-Api-Key", "s3cret")
	})
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_QueryParameter(t *testing.T) {
	w := runAuth("s3cret", func(r *http.Request) {
		q := r.URL.Query()
		q.Set("api_key", "s3cret")
		r.URL.RawQuery = q.Encode()
	})
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_WrongKeyRejected(t *testing.T) {
	w := runAuth("s3cret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_MissingKeyRejected(t *testing.T) {
	w := runAuth("s3cret", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_EmptySecretAllowsAll(t *testing.T) {
	w := runAuth("", nil)
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}
