// Package router はアプリケーションのルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	regressionhandler "stock_predictor/internal/feature/regression/transport/handler"
	symbollisthandler "stock_predictor/internal/feature/symbollist/transport/handler"
	"stock_predictor/internal/platform/http/handler"
	jwtmw "stock_predictor/internal/platform/jwt"
	"stock_predictor/internal/platform/metrics"
	"stock_predictor/internal/platform/ratelimit"
)

// Deps はルーターが必要とするハンドラーとミドルウェアの依存です。
type Deps struct {
	Health       *handler.HealthHandler
	Symbols      *symbollisthandler.SymbolHandler
	Regression   *regressionhandler.RegressionHandler
	Sessions     *jwtmw.Generator
	SecureCookie bool
	// UploadLimiter が nil の場合はアップロードを制限しない
	UploadLimiter *ratelimit.Limiter
	StaticDir     string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", d.Health.Health)
	r.HEAD("/healthz", d.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// グラフ画像などの静的ファイル
	if d.StaticDir != "" {
		r.Static("/static", d.StaticDir)
	}

	// アップロード可能な銘柄一覧
	r.GET("/symbols", d.Symbols.List)

	// セッション必須のルート
	// クッキーが無ければ新しいセッションを発行する
	prediction := r.Group("/prediction")
	prediction.Use(jwtmw.SessionRequired(d.Sessions, d.SecureCookie))
	{
		upload := []gin.HandlerFunc{d.Regression.Upload}
		if d.UploadLimiter != nil {
			limit := d.UploadLimiter.Middleware(jwtmw.SessionID, metrics.RateLimitedTotal.Inc)
			upload = append([]gin.HandlerFunc{limit}, upload...)
		}
		prediction.POST("/upload", upload...)
		prediction.POST("/predict", d.Regression.Predict)
		prediction.GET("/model", d.Regression.CurrentModel)
	}

	return r
}
