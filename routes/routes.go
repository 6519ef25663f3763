package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"github.com/ejjays/assets-management/cache"
	"github.com/ejjays/assets-management/handlers"
	"github.com/ejjays/assets-management/middleware"
)

// HTTP method sets. OPTIONS is listed so CORS preflights reach the middleware.
var (
	MethodsGetOnly    = []string{"GET", "OPTIONS"}
	MethodsPostOnly   = []string{"POST", "OPTIONS"}
	MethodsPutOnly    = []string{"PUT", "OPTIONS"}
	MethodsDeleteOnly = []string{"DELETE", "OPTIONS"}
)

const (
	PathAssets  = "/assets"
	PathChat    = "/chat"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
)

// Deps is everything the router wires together. Optional parts may be nil.
type Deps struct {
	Assets      *handlers.AssetHandler
	Snapshots   *handlers.SnapshotHandler
	Chat        *handlers.ChatHandler
	ChatSocket  http.Handler
	DB          handlers.Pinger
	Metrics     *middleware.Metrics
	ChatLimiter *limiter.Limiter
	Idempotency cache.ResponseStore
	Log         *zap.Logger
}

// RegisterRoutes installs the global middleware and every API route on r.
func RegisterRoutes(r *mux.Router, d Deps) {
	r.Use(middleware.Logging(d.Log))
	r.Use(middleware.Recovery(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Handle(PathMetrics, d.Metrics.Handler()).Methods(MethodsGetOnly...)
	}
	r.Use(middleware.CorsMiddleware)

	r.HandleFunc(PathHealth, handlers.HealthCheck(d.DB)).Methods(MethodsGetOnly...)

	// ====================
	// ASSETS
	// ====================
	create := http.Handler(http.HandlerFunc(d.Assets.CreateAsset))
	if d.Idempotency != nil {
		create = middleware.Idempotency(d.Idempotency, d.Log)(create)
	}

	r.HandleFunc(PathAssets, d.Assets.ListAssets).Methods(MethodsGetOnly...)
	r.Handle(PathAssets, create).Methods(MethodsPostOnly...)
	r.HandleFunc(PathAssets, d.Assets.UpdateAsset).Methods(MethodsPutOnly...)
	r.HandleFunc(PathAssets, d.Assets.DeleteAsset).Methods(MethodsDeleteOnly...)

	// fixed paths before {id}
	r.HandleFunc(PathAssets+"/stats", d.Assets.AssetStats).Methods(MethodsGetOnly...)
	r.HandleFunc(PathAssets+"/export", d.Assets.ExportAssets).Methods(MethodsGetOnly...)
	if d.Snapshots != nil {
		r.HandleFunc(PathAssets+"/snapshots", d.Snapshots.CreateSnapshot).Methods(MethodsPostOnly...)
	}

	r.HandleFunc(PathAssets+"/{id}", d.Assets.GetAsset).Methods(MethodsGetOnly...)
	r.HandleFunc(PathAssets+"/{id}", d.Assets.UpdateAsset).Methods(MethodsPutOnly...)
	r.HandleFunc(PathAssets+"/{id}", d.Assets.DeleteAsset).Methods(MethodsDeleteOnly...)
	r.HandleFunc(PathAssets+"/{id}/qr", d.Assets.AssetQRCode).Methods(MethodsGetOnly...)

	// ====================
	// CHAT
	// ====================
	if d.Chat != nil {
		chat := http.Handler(http.HandlerFunc(d.Chat.Chat))
		if d.ChatLimiter != nil {
			chat = middleware.RateLimit(d.ChatLimiter, d.Log)(chat)
		}
		r.Handle(PathChat, chat).Methods(MethodsPostOnly...)
	}
	if d.ChatSocket != nil {
		r.Handle(PathChat+"/ws", d.ChatSocket).Methods(http.MethodGet)
	}
}
