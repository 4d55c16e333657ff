package commands

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Sidecar string `json:"sidecar"`
}

func HealthHandler(commands *Commands) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := healthResponse{Status: "ok", Sidecar: "stopped"}
		if commands.Running() {
			res.Sidecar = "running"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(res)
	})
}
