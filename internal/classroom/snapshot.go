// internal/classroom/snapshot.go

// Package classroom 定義教室 session 的核心狀態：程式碼快照歷史、編輯器 live buffer、
// 問答串與理解度投票。本套件不含任何 HTTP 或儲存細節。
package classroom

import "time"

// Snapshot 為某一時刻程式碼的具名、不可變副本。
// JSON 形狀 {id, timestamp, title, description, code} 為對外介面，不可更動。
type Snapshot struct {
	ID          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
}

// History 保存有序的快照序列與「目前版本」索引。
//
// 排序策略為「最新在前」：新快照插入索引 0，且立即成為目前版本。
// ID 取建立當下的 len+1；序列只增不減，所以在此策略下 ID 仍唯一。
// 若日後加入刪除功能，ID 必須改為獨立的遞增計數器。
//
// 不變量：0 <= current < len(snapshots)。
// History 本身不加鎖，由 Session 序列化所有存取。
type History struct {
	snapshots []Snapshot
	current   int
	now       func() time.Time
}

// NewHistory 以單一種子快照建立歷史，current = 0。
func NewHistory(seed Snapshot) *History {
	return &History{snapshots: []Snapshot{seed}, now: time.Now}
}

// Create 以給定程式碼建立新快照，插入序列最前端並設為目前版本。
// 標題檢核由呼叫端（Editor）負責，此處不驗證。
func (h *History) Create(title, description, code string) Snapshot {
	s := Snapshot{
		ID:          len(h.snapshots) + 1,
		Timestamp:   h.now(),
		Title:       title,
		Description: description,
		Code:        code,
	}
	next := make([]Snapshot, 0, len(h.snapshots)+1)
	next = append(next, s)
	h.snapshots = append(next, h.snapshots...)
	h.current = 0
	return s
}

// Select 將目前版本設為 index，回傳被選取的快照供呼叫端覆寫 live buffer。
// 索引超出範圍時回傳 ErrVersionOutOfRange，狀態不變。
func (h *History) Select(index int) (Snapshot, error) {
	if index < 0 || index >= len(h.snapshots) {
		return Snapshot{}, ErrVersionOutOfRange
	}
	h.current = index
	return h.snapshots[index], nil
}

// Len 回傳快照數量。
func (h *History) Len() int { return len(h.snapshots) }

// Current 回傳目前版本索引。
func (h *History) Current() int { return h.current }

// CurrentSnapshot 回傳目前版本的快照。
func (h *History) CurrentSnapshot() Snapshot { return h.snapshots[h.current] }

// At 回傳指定位置的快照。
func (h *History) At(index int) (Snapshot, error) {
	if index < 0 || index >= len(h.snapshots) {
		return Snapshot{}, ErrVersionOutOfRange
	}
	return h.snapshots[index], nil
}

// List 以儲存順序回傳快照的複本。
func (h *History) List() []Snapshot {
	out := make([]Snapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// restoreHistory 由持久化資料重建歷史，並檢查不變量。
func restoreHistory(snaps []Snapshot, current int) (*History, error) {
	if len(snaps) == 0 || current < 0 || current >= len(snaps) {
		return nil, ErrCorruptState
	}
	cp := make([]Snapshot, len(snaps))
	copy(cp, snaps)
	return &History{snapshots: cp, current: current, now: time.Now}, nil
}
