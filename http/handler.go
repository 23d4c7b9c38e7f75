package http

import (
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/logs"
)

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func HandleReadyCheck(readinessCheck func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if readinessCheck == nil || !readinessCheck() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func HandleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(version))
	}
}

// HandleSummary serves the JSON summary of the loaded graph. It answers 404
// while no graph is loaded.
func HandleSummary(summary func() ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if summary == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		data, err := summary()
		if err != nil {
			logs.WithTag("path", r.URL.Path).Error(err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if data == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
