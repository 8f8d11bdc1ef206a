// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的結構模型。
// 該層只描述教室狀態的序列化格式，不含任何商業邏輯；
// classroom 套件負責在領域型別與本檔結構之間轉換。
//
// ───────────────────────────────
// 設計理念：
// - **關注分離**：此層僅定義資料結構，JSON 與 SQLite 後端共用同一份模型。
// - **可演進性**：Meta 保留版本與時間戳，便於日後格式升級。
// ───────────────────────────────
package storage

import "time"

// Meta 為所有持久化狀態的中繼資料 (metadata)。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_snapshot"、"sqlite"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 寫入時間
	Note      string    `json:"note,omitempty"` // 備註
}

// PersistSnapshot 為程式碼快照的序列化格式，欄位與對外 JSON 形狀一致。
type PersistSnapshot struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
}

// PersistMessage 為提問或回覆的序列化格式；回覆的 Replies 永遠為空。
type PersistMessage struct {
	ID           string           `json:"id"`
	Text         string           `json:"text"`
	Timestamp    time.Time        `json:"timestamp"`
	UserName     string           `json:"user_name"`
	IsInstructor bool             `json:"is_instructor"`
	Replies      []PersistMessage `json:"replies,omitempty"`
}

// PersistPoll 為理解度投票的序列化格式。
// Votes：投票者 → 選項代碼。
type PersistPoll struct {
	Prompt string            `json:"prompt"`
	Votes  map[string]string `json:"votes"`
}

// PersistSession 為單一教室 session 的完整狀態。
// Snapshots 依儲存順序排列（最新在前），Current 為其索引。
type PersistSession struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Code      string            `json:"code"`  // 編輯器目前的 live buffer
	Dirty     bool              `json:"dirty"` // live buffer 是否含未存成快照的修改
	Current   int               `json:"current_version"`
	Snapshots []PersistSnapshot `json:"snapshots"`
	Questions []PersistMessage  `json:"questions"`
	Poll      PersistPoll       `json:"poll"`
}

// State 為整個教室服務的完整快照，供載入與保存使用。
type State struct {
	Meta     Meta             `json:"_meta"`
	Sessions []PersistSession `json:"sessions"`
}
