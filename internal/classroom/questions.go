// internal/classroom/questions.go

package classroom

import (
	"strings"
	"time"
)

// DefaultUserName 為未提供名稱時的使用者名稱。
const DefaultUserName = "Student"

// User 為訊息作者。IsInstructor 決定訊息是否以講師身分顯示。
type User struct {
	Name         string `json:"name"`
	IsInstructor bool   `json:"is_instructor,omitempty"`
}

// Message 為一則提問或回覆。回覆只掛在頂層問題下，不再巢狀。
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	User      User      `json:"user"`
	Replies   []Message `json:"replies"`
}

// clone 深拷貝訊息，避免呼叫端修改內部切片。
func (m Message) clone() Message {
	cp := m
	cp.Replies = make([]Message, len(m.Replies))
	copy(cp.Replies, m.Replies)
	return cp
}

// Board 管理問答串：問題依提出順序排列（舊的在前），回覆附加在對應問題之後。
type Board struct {
	messages []Message
	newID    IDGenerator
	now      func() time.Time
}

// NewBoard 建立空白問答串。
func NewBoard(newID IDGenerator, now func() time.Time) *Board {
	if newID == nil {
		newID = Prefixed("msg_", UUIDv7())
	}
	if now == nil {
		now = time.Now
	}
	return &Board{newID: newID, now: now}
}

func (b *Board) newMessage(text string, u User) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyText
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = DefaultUserName
	}
	return Message{
		ID:        b.newID(),
		Text:      text,
		Timestamp: b.now(),
		User:      u,
		Replies:   []Message{},
	}, nil
}

// Ask 新增一則頂層問題。
func (b *Board) Ask(text string, u User) (Message, error) {
	m, err := b.newMessage(text, u)
	if err != nil {
		return Message{}, err
	}
	b.messages = append(b.messages, m)
	return m.clone(), nil
}

// Reply 在 parentID 指定的頂層問題下新增回覆。
func (b *Board) Reply(parentID, text string, u User) (Message, error) {
	idx := -1
	for i := range b.messages {
		if b.messages[i].ID == parentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Message{}, ErrQuestionNotFound
	}
	m, err := b.newMessage(text, u)
	if err != nil {
		return Message{}, err
	}
	b.messages[idx].Replies = append(b.messages[idx].Replies, m)
	return m.clone(), nil
}

// List 回傳整個問答串的深拷貝。
func (b *Board) List() []Message {
	out := make([]Message, len(b.messages))
	for i, m := range b.messages {
		out[i] = m.clone()
	}
	return out
}

// Len 回傳頂層問題數量。
func (b *Board) Len() int { return len(b.messages) }

// seedMessages 依種子建立初始問答串；時間戳為 now 減去各自的 Age。
// 回覆只取一層，與 Reply 相同；更深的巢狀由 config 載入時拒絕。
func (b *Board) seedMessages(seeds []SeedMessage) {
	now := b.now()
	for _, sm := range seeds {
		q := b.seeded(sm, now)
		for _, sr := range sm.Replies {
			q.Replies = append(q.Replies, b.seeded(sr, now))
		}
		b.messages = append(b.messages, q)
	}
}

func (b *Board) seeded(sm SeedMessage, now time.Time) Message {
	u := sm.User
	if strings.TrimSpace(u.Name) == "" {
		u.Name = DefaultUserName
	}
	return Message{
		ID:        b.newID(),
		Text:      sm.Text,
		Timestamp: now.Add(-sm.Age),
		User:      u,
		Replies:   []Message{},
	}
}
