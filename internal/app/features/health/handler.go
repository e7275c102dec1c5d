// internal/app/features/health/handler.go
package health

import (
	"context"
	"net/http"

	"github.com/rowphant/headless-wp/internal/app/system/httpapi"
	"github.com/rowphant/headless-wp/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler reports service liveness for load balancers and orchestrators.
type Handler struct {
	Client *mongo.Client
	Log    *zap.Logger
}

func NewHandler(client *mongo.Client, log *zap.Logger) *Handler {
	return &Handler{Client: client, Log: log}
}

type healthResponse struct {
	Status string `json:"status"`
	Mongo  string `json:"mongo"`
}

// ServeHealth pings Mongo and reports overall status.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Mongo: "ok"}
	status := http.StatusOK
	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Warn("health check mongo ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Mongo = "unreachable"
		status = http.StatusServiceUnavailable
	}
	httpapi.JSON(w, status, resp)
}
