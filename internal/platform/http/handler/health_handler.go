// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceInfo identifies the running service in root and health responses.
type ServiceInfo struct {
	Name    string // e.g. "asset-service"
	Title   string // e.g. "Asset Service API"
	Version string
}

// Root は / エンドポイントでサービス名とバージョンを返します。
func Root(info ServiceInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": info.Title, "version": info.Version})
	}
}

// Health はサービスヘルスチェック用の /health, /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(info ServiceInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(http.StatusOK)
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
		default:
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": info.Name})
		}
	}
}
