package view

import (
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user_registry/internal/feature/users/domain/entity"
	"user_registry/internal/platform/session"
	"user_registry/internal/platform/validation"
)

func renderPage(t *testing.T, r *Renderer, name string, data any) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, page := range []string{
		"index.html", "user.html", "name.html", "test_password.html",
		"add_user.html", "update.html", "400.html", "404.html", "500.html",
	} {
		assert.True(t, r.Has(page), "missing page %s", page)
	}
	assert.False(t, r.Has("base.html"), "layout is not a page")
}

func TestRenderer_EscapesUserInput(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	body := renderPage(t, r, "index.html", gin.H{
		"Stuff":  `Trigger <script>alert("You have been hacked!");</script>`,
		"Pizzas": []string{"peporoni"},
		"Users": []entity.User{
			{ID: 1, Name: "<b>bold</b>", Email: "a@x.com", DateAdded: time.Now()},
		},
	})

	assert.NotContains(t, body, "<script>alert")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<b>bold</b>")
	assert.Contains(t, body, "peporoni")
}

func TestRenderer_ProfileName(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	body := renderPage(t, r, "user.html", gin.H{"UserName": `<img src=x onerror=alert(1)>`})

	assert.NotContains(t, body, "<img")
	assert.Contains(t, body, "Hello &lt;img")
}

func TestRenderer_FlashesAndCSRF(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	body := renderPage(t, r, "name.html", gin.H{
		"Flashes":   []session.Flash{{Category: session.CategorySuccess, Message: "Form Submitted Successfully!"}},
		"CSRFToken": "tok123",
		"Fields":    Fields(validation.Form{{Field: "name", Label: "What's your Name", Required: true}}, nil, nil),
	})

	assert.Contains(t, body, "alert-success")
	assert.Contains(t, body, "Form Submitted Successfully!")
	assert.Contains(t, body, `name="csrf_token" value="tok123"`)
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	err = r.Instance("missing.html", nil).Render(httptest.NewRecorder())

	assert.Error(t, err)
}

func TestNewFromFS_BadTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"t/base.html":   {Data: []byte(`{{define "base"}}{{block "content" .}}{{end}}{{end}}`)},
		"t/broken.html": {Data: []byte(`{{define "content"}}{{.Oops{{end}}`)},
	}

	_, err := NewFromFS(fsys, "t")

	assert.ErrorContains(t, err, "broken.html")
}

func TestFields(t *testing.T) {
	form := validation.Form{
		{Field: "name", Label: "Name", Required: true},
		{Field: "email", Label: "Email", Required: true},
		{Field: "password_hash", Label: "Password", Required: true},
	}
	values := map[string]string{"name": "Alice", "email": "a@x.com", "password_hash": "secret"}
	errs := validation.Errors{"name": {validation.MsgRequired}}

	fields := Fields(form, values, errs)

	require.Len(t, fields, 3)
	assert.Equal(t, Field{Name: "name", Label: "Name", Type: "text", Value: "Alice", Errors: []string{validation.MsgRequired}}, fields["name"])
	assert.Equal(t, "email", fields["email"].Type)
	assert.Equal(t, "password", fields["password_hash"].Type)
	assert.Empty(t, fields["password_hash"].Value, "passwords are never echoed")
}
