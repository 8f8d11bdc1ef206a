// internal/classroom/editor.go

package classroom

import "strings"

// Editor 持有 live buffer：使用者正在編輯、尚未存成快照的程式碼。
// 每次按鍵都可自由修改，與 History 無關，直到明確建立快照為止。
type Editor struct {
	history *History
	code    string
	dirty   bool
}

// NewEditor 以 history 的目前版本內容初始化 live buffer。
func NewEditor(h *History) *Editor {
	return &Editor{history: h, code: h.CurrentSnapshot().Code}
}

// Code 回傳 live buffer 內容。
func (e *Editor) Code() string { return e.code }

// Dirty 回報 live buffer 是否與目前版本的快照內容不同。
func (e *Editor) Dirty() bool { return e.dirty }

// Edit 覆寫 live buffer；不影響任何快照。
func (e *Editor) Edit(code string) {
	e.code = code
	e.dirty = code != e.history.CurrentSnapshot().Code
}

// RequestSnapshot 以目前 live buffer 建立快照。
// 標題去除空白後為空時回傳 ErrEmptyTitle，且完全不呼叫 History。
func (e *Editor) RequestSnapshot(title, description string) (Snapshot, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Snapshot{}, ErrEmptyTitle
	}
	s := e.history.Create(title, description, e.code)
	e.dirty = false
	return s, nil
}

// SelectVersion 切換目前版本，並無條件以該快照內容覆寫 live buffer。
// 第二個回傳值表示是否因此捨棄了未存成快照的修改（不合併、不阻擋）。
func (e *Editor) SelectVersion(index int) (Snapshot, bool, error) {
	s, err := e.history.Select(index)
	if err != nil {
		return Snapshot{}, false, err
	}
	discarded := e.dirty
	e.code = s.Code
	e.dirty = false
	return s, discarded, nil
}
