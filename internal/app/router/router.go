// Package router はアプリケーションのルーティングを構築します。
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	usershandler "user_registry/internal/feature/users/transport/handler"
	"user_registry/internal/platform/csrf"
	platformhandler "user_registry/internal/platform/http/handler"
	"user_registry/internal/platform/session"
)

// Options はルーター構築時の設定です。
type Options struct {
	HTML         render.HTMLRender
	CSRF         *csrf.Issuer
	CookieSecure bool
}

var formMethods = []string{http.MethodGet, http.MethodPost}

// NewRouter はミドルウェアとルートを登録したgin.Engineを返します。
func NewRouter(opts Options, users *usershandler.UserHandler, health *platformhandler.HealthHandler) *gin.Engine {
	r := gin.New()
	r.HTMLRender = opts.HTML
	r.Use(gin.Logger(), gin.CustomRecovery(users.Recover))

	// 導通確認用（セッション・CSRF対象外）
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	// HTMLページ
	pages := r.Group("/")
	pages.Use(session.Middleware(opts.CookieSecure))
	pages.Use(csrf.Protect(opts.CSRF, users.CSRFFailure))
	{
		pages.GET("/", users.Index)
		pages.GET("/user_profile/:name", users.UserProfile)
		pages.Match(formMethods, "/name", users.Name)
		pages.Match(formMethods, "/test_password", users.TestPassword)
		pages.Match(formMethods, "/user/add", users.AddUser)
		pages.Match(formMethods, "/update/:id", users.UpdateUser)
		pages.GET("/delete/user/:id", users.DeleteUser)
	}

	// 未定義のルートは404ページ
	r.NoRoute(session.Middleware(opts.CookieSecure), users.NotFound)

	return r
}
