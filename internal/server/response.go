// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式：成功回應為 JSON，錯誤回應為 {"error": "..."}。
// 領域錯誤到狀態碼的對應也集中在此。
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"codeshare/internal/classroom"
)

// writeJSON 統一輸出成功回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr 統一輸出錯誤回應。
func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// errStatus 將領域錯誤對應到 HTTP 狀態碼；未知錯誤視為 500。
func errStatus(err error) int {
	switch {
	case errors.Is(err, classroom.ErrSessionNotFound),
		errors.Is(err, classroom.ErrQuestionNotFound),
		errors.Is(err, classroom.ErrVersionOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, classroom.ErrEmptyTitle),
		errors.Is(err, classroom.ErrEmptyText),
		errors.Is(err, classroom.ErrUnknownChoice),
		errors.Is(err, classroom.ErrEmptyVoter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
