// internal/classroom/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 由上層 HTTP handler 以 errors.Is 轉換成適當的 HTTP 狀態碼。

package classroom

import "errors"

var (
	// ErrSessionNotFound 代表 session 不存在。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrSessionNotFound = errors.New("session not found")

	// ErrVersionOutOfRange 代表選取的快照索引超出範圍。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrVersionOutOfRange = errors.New("snapshot index out of range")

	// ErrEmptyTitle 代表建立快照時未提供標題。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrEmptyTitle = errors.New("snapshot title must not be empty")

	// ErrEmptyText 代表提問或回覆內容為空（去除空白後）。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrEmptyText = errors.New("message text must not be empty")

	// ErrQuestionNotFound 代表回覆的對象不是既有的頂層問題。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrQuestionNotFound = errors.New("question not found")

	// ErrUnknownChoice 代表投票選項不存在。
	ErrUnknownChoice = errors.New("unknown vote choice")

	// ErrEmptyVoter 代表投票者識別為空。
	ErrEmptyVoter = errors.New("voter must not be empty")

	// ErrCorruptState 代表從儲存層還原的資料違反不變量（例如沒有任何快照）。
	ErrCorruptState = errors.New("corrupt persisted state")
)
