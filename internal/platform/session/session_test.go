package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newSessionRouter(secure bool) *gin.Engine {
	r := gin.New()
	r.Use(Middleware(secure))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ID(c))
	})
	return r
}

func TestMiddleware_IssuesCookieWhenMissing(t *testing.T) {
	router := newSessionRouter(true)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err, "session id must be a UUID")
	assert.Equal(t, cookies[0].Value, w.Body.String(), "handler sees the issued id")
}

func TestMiddleware_ReusesValidCookie(t *testing.T) {
	router := newSessionRouter(false)
	id := uuid.NewString()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})

	router.ServeHTTP(w, req)

	assert.Equal(t, id, w.Body.String())
	assert.Empty(t, w.Result().Cookies(), "no new cookie for a valid session")
}

func TestMiddleware_ReplacesMalformedCookie(t *testing.T) {
	router := newSessionRouter(false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-uuid"})

	router.ServeHTTP(w, req)

	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	require.Len(t, w.Result().Cookies(), 1)
}

func TestID_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, ID(c))
}
