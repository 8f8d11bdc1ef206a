// internal/classroom/classroom.go

package classroom

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"codeshare/internal/storage"
)

// DefaultSessionName 為未命名 session 的名稱。
const DefaultSessionName = "Untitled session"

// Classroom 為聚合根 (Aggregate Root)：管理所有 session。
// - mu：保護 sessions 與 order；個別 session 的狀態由其自身的鎖保護。
// - order：保留建立順序，讓 List 與 Export 的結果穩定。
// 每個 session 彼此獨立，不共用任何可變狀態。
type Classroom struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string

	seed         Seed
	newSessionID IDGenerator
	newMsgID     IDGenerator
	now          func() time.Time
}

// Option 調整 Classroom 的建構參數。
type Option func(*Classroom)

// WithSeed 指定新 session 的種子資料。
func WithSeed(s Seed) Option { return func(c *Classroom) { c.seed = s.withDefaults() } }

// WithIDGenerators 指定 session 與訊息的 ID 產生器。
func WithIDGenerators(session, message IDGenerator) Option {
	return func(c *Classroom) {
		if session != nil {
			c.newSessionID = session
		}
		if message != nil {
			c.newMsgID = message
		}
	}
}

// WithClock 指定時間來源，供測試固定時間戳。
func WithClock(now func() time.Time) Option { return func(c *Classroom) { c.now = now } }

// New 建立空白教室（僅就緒的 in-memory 狀態，無外部依賴）。
func New(opts ...Option) *Classroom {
	c := &Classroom{
		sessions:     make(map[string]*Session),
		seed:         DefaultSeed(),
		newSessionID: Prefixed("ses_", UUIDv7()),
		newMsgID:     Prefixed("msg_", UUIDv7()),
		now:          time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Create 以種子資料建立新 session。
func (c *Classroom) Create(name string) *Session {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSessionName
	}
	s := newSession(c.newSessionID(), name, c.now(), c.seed, c.newMsgID, c.now)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = s
	c.order = append(c.order, s.ID)
	return s
}

// Get 依 ID 取得 session；不存在回傳 ErrSessionNotFound。
func (c *Classroom) Get(id string) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List 依建立順序回傳所有 session 的摘要。
func (c *Classroom) List() []SessionSummary {
	c.mu.RLock()
	ss := make([]*Session, 0, len(c.order))
	for _, id := range c.order {
		ss = append(ss, c.sessions[id])
	}
	c.mu.RUnlock()

	out := make([]SessionSummary, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Summary())
	}
	return out
}

// Delete 移除 session。
func (c *Classroom) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(c.sessions, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len 回傳 session 數量。
func (c *Classroom) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Export 匯出所有 session 到可持久化的 storage.State。
func (c *Classroom) Export() storage.State {
	c.mu.RLock()
	ss := make([]*Session, 0, len(c.order))
	for _, id := range c.order {
		ss = append(ss, c.sessions[id])
	}
	c.mu.RUnlock()

	st := storage.State{Meta: storage.Meta{Version: 1}}
	for _, s := range ss {
		st.Sessions = append(st.Sessions, s.export())
	}
	return st
}

// Restore 由 storage.State 重建所有 session，取代目前內容。
// 任一 session 違反不變量時整批放棄，原狀態不變。
func (c *Classroom) Restore(st storage.State) error {
	sessions := make(map[string]*Session, len(st.Sessions))
	order := make([]string, 0, len(st.Sessions))
	for _, ps := range st.Sessions {
		s, err := c.restoreSession(ps)
		if err != nil {
			return fmt.Errorf("restore session %s: %w", ps.ID, err)
		}
		if _, dup := sessions[s.ID]; dup {
			return fmt.Errorf("restore session %s: %w", ps.ID, ErrCorruptState)
		}
		sessions[s.ID] = s
		order = append(order, s.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = sessions
	c.order = order
	return nil
}

func (s *Session) export() storage.PersistSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps := storage.PersistSession{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Code:      s.editor.Code(),
		Dirty:     s.editor.Dirty(),
		Current:   s.history.Current(),
		Poll: storage.PersistPoll{
			Prompt: s.poll.prompt,
			Votes:  make(map[string]string, len(s.poll.votes)),
		},
	}
	for _, snap := range s.history.List() {
		ps.Snapshots = append(ps.Snapshots, storage.PersistSnapshot(snap))
	}
	for _, m := range s.board.List() {
		pm := toPersistMessage(m)
		for _, r := range m.Replies {
			pm.Replies = append(pm.Replies, toPersistMessage(r))
		}
		ps.Questions = append(ps.Questions, pm)
	}
	for voter, choice := range s.poll.votes {
		ps.Poll.Votes[voter] = string(choice)
	}
	return ps
}

func (c *Classroom) restoreSession(ps storage.PersistSession) (*Session, error) {
	if ps.ID == "" {
		return nil, ErrCorruptState
	}
	snaps := make([]Snapshot, 0, len(ps.Snapshots))
	for _, p := range ps.Snapshots {
		snaps = append(snaps, Snapshot(p))
	}
	h, err := restoreHistory(snaps, ps.Current)
	if err != nil {
		return nil, err
	}
	h.now = c.now

	b := NewBoard(c.newMsgID, c.now)
	for _, pq := range ps.Questions {
		q := fromPersistMessage(pq)
		for _, pr := range pq.Replies {
			q.Replies = append(q.Replies, fromPersistMessage(pr))
		}
		b.messages = append(b.messages, q)
	}

	// 預設題目取自教室種子，持久化的只是本輪題目
	p := NewPoll(c.seed.PollPrompt)
	if ps.Poll.Prompt != "" {
		p.prompt = ps.Poll.Prompt
	}
	for voter, choice := range ps.Poll.Votes {
		if err := p.Cast(voter, Choice(choice)); err != nil {
			return nil, fmt.Errorf("vote %q: %w", voter, err)
		}
	}

	// live buffer 直接還原；dirty 依內容重新計算，不信任檔案中的旗標
	e := NewEditor(h)
	e.Edit(ps.Code)

	return &Session{
		ID:        ps.ID,
		Name:      ps.Name,
		CreatedAt: ps.CreatedAt,
		history:   h,
		editor:    e,
		board:     b,
		poll:      p,
	}, nil
}

func toPersistMessage(m Message) storage.PersistMessage {
	return storage.PersistMessage{
		ID:           m.ID,
		Text:         m.Text,
		Timestamp:    m.Timestamp,
		UserName:     m.User.Name,
		IsInstructor: m.User.IsInstructor,
	}
}

func fromPersistMessage(pm storage.PersistMessage) Message {
	return Message{
		ID:        pm.ID,
		Text:      pm.Text,
		Timestamp: pm.Timestamp,
		User:      User{Name: pm.UserName, IsInstructor: pm.IsInstructor},
		Replies:   []Message{},
	}
}
