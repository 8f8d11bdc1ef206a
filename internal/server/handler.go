// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP JSON 介面，作為 classroom 模組的應用層 (Application Layer)。
// 每個 handler 僅負責：
//  1. 接收與驗證 HTTP 請求
//  2. 呼叫 classroom 層執行領域邏輯
//  3. 回傳標準化 JSON 回應
//  4. 成功變更狀態後呼叫 s.persist()，將目前教室狀態交給儲存後端
//
// 分層：
//   - classroom：純領域邏輯，與 HTTP 無關。
//   - server：處理傳輸層（Transport Layer）。
//   - storage：負責持久化。
package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"codeshare/internal/classroom"
)

// Server 為 HTTP 層核心結構：
// - Classroom：注入領域層（所有 session）。
// - persist：注入持久化鉤子，server 不需關心儲存實作細節。
// - logger：結構化日誌。
type Server struct {
	Classroom *classroom.Classroom
	persist   func() error
	logger    *slog.Logger
}

// NewServer 建立新的 HTTP 伺服器。
// persist 可為 nil；若提供則會於每次成功變更後觸發。logger 為 nil 時使用 slog.Default()。
func NewServer(c *classroom.Classroom, persist func() error, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	sessionsActive.Set(float64(c.Len()))
	return &Server{Classroom: c, persist: persist, logger: logger}
}

// afterMutation 於成功變更後呼叫持久化鉤子；失敗只記錄，不影響已送出的回應。
func (s *Server) afterMutation() {
	if s.persist == nil {
		return
	}
	if err := s.persist(); err != nil {
		persistFailures.Inc()
		s.logger.Error("persist failed", "error", err)
	}
}

// session 依 URL 中的 {sid} 取得 session；不存在時直接寫出 404。
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*classroom.Session, bool) {
	sess, err := s.Classroom.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeErr(w, err, errStatus(err))
		return nil, false
	}
	return sess, true
}

// createSession 處理 POST /sessions → 以種子資料建立新 session。
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decode(w, r, &req, true) {
		return
	}
	sess := s.Classroom.Create(req.Name)
	sessionsActive.Set(float64(s.Classroom.Len()))
	s.logger.Info("session created", "session", sess.ID, "name", sess.Name)

	writeJSON(w, http.StatusCreated, sess.View())
	s.afterMutation()
}

// listSessions 處理 GET /sessions。
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Classroom.List())
}

// getSession 處理 GET /sessions/{sid} → 編輯器內容、dirty、目前版本與所有快照。
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// deleteSession 處理 DELETE /sessions/{sid}。
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sid")
	if err := s.Classroom.Delete(id); err != nil {
		writeErr(w, err, errStatus(err))
		return
	}
	sessionsActive.Set(float64(s.Classroom.Len()))
	s.logger.Info("session deleted", "session", id)

	w.WriteHeader(http.StatusNoContent)
	s.afterMutation()
}

// editCode 處理 PUT /sessions/{sid}/code → 覆寫 live buffer（不建立快照）。
func (s *Server) editCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req editCodeRequest
	if !decode(w, r, &req, false) {
		return
	}
	dirty := sess.Edit(*req.Code)
	writeJSON(w, http.StatusOK, map[string]any{"code": *req.Code, "dirty": dirty})
	s.afterMutation()
}

// listSnapshots 處理 GET /sessions/{sid}/snapshots → 依儲存順序（最新在前）與目前版本。
func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snaps, cur := sess.Snapshots()
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshots":       snaps,
		"current_version": cur,
	})
}

// createSnapshot 處理 POST /sessions/{sid}/snapshots → 以 live buffer 建立快照並設為目前版本。
func (s *Server) createSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req createSnapshotRequest
	if !decode(w, r, &req, false) {
		return
	}
	snap, err := sess.CreateSnapshot(req.Title, req.Description)
	if err != nil {
		writeErr(w, err, errStatus(err))
		return
	}
	snapshotsCreated.Inc()
	s.logger.Info("snapshot created", "session", sess.ID, "snapshot", snap.ID, "title", snap.Title)

	writeJSON(w, http.StatusCreated, snap)
	s.afterMutation()
}

// selectVersion 處理 POST /sessions/{sid}/snapshots/{index}/select。
// 以選取快照的內容無條件覆寫 live buffer；若因此捨棄未保存的修改，回應中 discarded=true。
func (s *Server) selectVersion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeErr(w, errBadIndex, http.StatusBadRequest)
		return
	}
	snap, discarded, err := sess.SelectVersion(index)
	if err != nil {
		writeErr(w, err, errStatus(err))
		return
	}
	versionsSelected.WithLabelValues(strconv.FormatBool(discarded)).Inc()
	if discarded {
		s.logger.Warn("unsaved edits discarded by version switch", "session", sess.ID, "index", index)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"current_version": index,
		"snapshot":        snap,
		"code":            snap.Code,
		"discarded":       discarded,
	})
	s.afterMutation()
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
