package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

type versionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// VersionHandler reports build metadata injected with -ldflags.
func VersionHandler(build BuildInfo) http.Handler {
	response := versionResponse{
		Version:   orDefault(build.Version, "dev"),
		GitCommit: orDefault(build.GitCommit, "unknown"),
		BuildDate: orDefault(build.BuildDate, "unknown"),
		GoVersion: runtime.Version(),
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	})
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
