package handlers

import (
	"context"
	"net/http"

	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
)

// Pinger reports database reachability. *database.DB satisfies it.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports 200 when the database answers and 503 otherwise
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "up"})
	}
}
