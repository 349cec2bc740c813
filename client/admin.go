package client

import (
	"encoding/json"
	"net/http"
)

// HandleMetrics 输出会话运行指标
// GET /metrics
func HandleMetrics(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		payload := map[string]any{
			"session": s.ID,
			"metrics": s.metrics.Snapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// HandleState 输出世界镜像摘要（玩家数、本地身份、相机位置等）
// GET /state
func HandleState(s *Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.Summary())
	}
}

// NewDebugMux 调试接口路由
func NewDebugMux(s *Session) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", HandleMetrics(s))
	mux.HandleFunc("/state", HandleState(s))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-s.Done():
			http.Error(w, "session closed", http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	})
	return mux
}
