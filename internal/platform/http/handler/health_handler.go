// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pingTimeout はヘルスチェック時のDB疎通確認のタイムアウトです。
const pingTimeout = 2 * time.Second

// Pinger はデータベース接続の疎通確認を抽象化します。*sql.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler は /healthz エンドポイントを処理します。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成します。
// db が nil の場合は疎通確認を省略します。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// DBに到達できない場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			slog.Error("health check: database unreachable", "error", err)
			if c.Request.Method == http.MethodHead {
				c.Status(http.StatusServiceUnavailable)
				return
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
