package controllers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports process readiness
type HealthController struct {
	Common
	DB Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(common Common, db Pinger) *HealthController {
	return &HealthController{Common: common, DB: db}
}

// Health pings the database
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := hc.context(r)
	defer cancel()
	if err := hc.DB.Ping(ctx); err != nil {
		hc.Logger.Warn("health check failed", zap.Error(err))
		fail(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
