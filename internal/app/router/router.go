// Package router builds the HTTP routes of the ops server.
package router

import (
	"github.com/gin-gonic/gin"

	runhandler "ngx_pipeline/internal/feature/runs/transport/handler"
	"ngx_pipeline/internal/platform/http/handler"
)

// NewRouter はヘルスチェックと実行レポートのエンドポイントを登録します。
// db が nil の場合 /readyz は常に成功します。
func NewRouter(runs *runhandler.RunsHandler, db handler.Pinger) *gin.Engine {
	r := gin.Default()

	// ヘルスチェック
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(db))

	// latest pipeline runs, newest first
	r.GET("/runs", runs.List)

	return r
}
