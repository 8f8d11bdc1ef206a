// internal/classroom/session.go

package classroom

import (
	"sync"
	"time"
)

// Session 為單一教室：一份共用編輯器、快照歷史、問答串與理解度投票。
// - mu：序列化所有讀寫，讓每個請求如同 UI 事件一樣「執行到完成」後才處理下一個。
// - 所有回傳值皆為拷貝，不暴露內部切片。
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu      sync.Mutex
	history *History
	editor  *Editor
	board   *Board
	poll    *Poll
}

// SessionView 為 session 的完整快照（值拷貝）。
type SessionView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	CreatedAt      time.Time  `json:"created_at"`
	Code           string     `json:"code"`
	Dirty          bool       `json:"dirty"`
	CurrentVersion int        `json:"current_version"`
	Snapshots      []Snapshot `json:"snapshots"`
}

// SessionSummary 為列表用的精簡資訊。
type SessionSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	SnapshotCount int       `json:"snapshot_count"`
	QuestionCount int       `json:"question_count"`
}

func newSession(id, name string, now time.Time, seed Seed, newMsgID IDGenerator, clock func() time.Time) *Session {
	h := NewHistory(Snapshot{
		ID:          1,
		Timestamp:   now,
		Title:       seed.SnapshotTitle,
		Description: seed.SnapshotDescription,
		Code:        seed.Code,
	})
	h.now = clock
	b := NewBoard(newMsgID, clock)
	b.seedMessages(seed.Messages)
	return &Session{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		history:   h,
		editor:    NewEditor(h),
		board:     b,
		poll:      NewPoll(seed.PollPrompt),
	}
}

// View 回傳 session 目前狀態。
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		ID:             s.ID,
		Name:           s.Name,
		CreatedAt:      s.CreatedAt,
		Code:           s.editor.Code(),
		Dirty:          s.editor.Dirty(),
		CurrentVersion: s.history.Current(),
		Snapshots:      s.history.List(),
	}
}

// Summary 回傳列表用的精簡資訊。
func (s *Session) Summary() SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSummary{
		ID:            s.ID,
		Name:          s.Name,
		CreatedAt:     s.CreatedAt,
		SnapshotCount: s.history.Len(),
		QuestionCount: s.board.Len(),
	}
}

// Code 回傳 live buffer 與 dirty 旗標。
func (s *Session) Code() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Code(), s.editor.Dirty()
}

// Edit 覆寫 live buffer，回傳新的 dirty 狀態。
func (s *Session) Edit(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Edit(code)
	return s.editor.Dirty()
}

// CreateSnapshot 以 live buffer 建立快照並設為目前版本。
func (s *Session) CreateSnapshot(title, description string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.RequestSnapshot(title, description)
}

// SelectVersion 切換目前版本並以其內容覆寫 live buffer。
func (s *Session) SelectVersion(index int) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.SelectVersion(index)
}

// Snapshots 回傳快照列表與目前版本索引。
func (s *Session) Snapshots() ([]Snapshot, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.List(), s.history.Current()
}

// Questions 回傳問答串。
func (s *Session) Questions() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.List()
}

// Ask 新增頂層問題。
func (s *Session) Ask(text string, u User) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Ask(text, u)
}

// Reply 回覆既有問題。
func (s *Session) Reply(parentID, text string, u User) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Reply(parentID, text, u)
}

// Tally 回傳投票結果。
func (s *Session) Tally() Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poll.Tally()
}

// Vote 投票後回傳最新結果。
func (s *Session) Vote(voter string, c Choice) (Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.poll.Cast(voter, c); err != nil {
		return Tally{}, err
	}
	return s.poll.Tally(), nil
}

// ResetPoll 清空投票並開始新一輪。
func (s *Session) ResetPoll(prompt string) Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poll.Reset(prompt)
	return s.poll.Tally()
}
