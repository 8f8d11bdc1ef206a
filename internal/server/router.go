// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊，與 handler.go 分離：
//   - handler.go / questions.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」
//   - main.go 組裝整體應用（注入 Classroom、儲存後端、Persist Hook）
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 未註冊的方法由 chi 回傳 405，未知路徑回傳 404。
func (s *Server) Router() http.Handler {
	v1 := chi.NewRouter()

	// 健康檢查
	v1.Get("/health", s.health)

	v1.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)

			// 編輯器與快照
			r.Put("/code", s.editCode)
			r.Get("/snapshots", s.listSnapshots)
			r.Post("/snapshots", s.createSnapshot)
			r.Post("/snapshots/{index}/select", s.selectVersion)

			// 問答
			r.Get("/questions", s.listQuestions)
			r.Post("/questions", s.askQuestion)
			r.Post("/questions/{qid}/replies", s.replyQuestion)

			// 理解度投票
			r.Get("/vote", s.tally)
			r.Post("/vote", s.castVote)
			r.Delete("/vote", s.resetVote)
		})
	})

	// ────────────────
	// API Version Mounting
	// ────────────────
	//
	// 所有端點掛在 /api/v1/ 下，同時保留根路徑（/）方便本地開發或測試。
	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.RealIP)
	root.Use(s.requestLogger)
	root.Use(middleware.Recoverer)

	root.Handle("/metrics", promhttp.Handler())
	root.Mount("/api/v1", v1)
	root.Mount("/", v1)

	return root
}
