// internal/classroom/seed.go

package classroom

import "time"

// InitialCode 為每個新 session 種子快照的程式碼。
const InitialCode = `function example() {
    console.log("Hello, CodeShare!");
}`

// SeedMessage 為初始問答串中的一則訊息；Age 表示相對於建立時間往前推多久。
type SeedMessage struct {
	Text    string
	User    User
	Age     time.Duration
	Replies []SeedMessage
}

// Seed 描述新 session 的初始狀態。
type Seed struct {
	Code                string
	SnapshotTitle       string
	SnapshotDescription string
	PollPrompt          string
	Messages            []SeedMessage
}

// DefaultSeed 回傳內建的種子資料。
func DefaultSeed() Seed {
	instructor := User{Name: "Instructor", IsInstructor: true}
	return Seed{
		Code:                InitialCode,
		SnapshotTitle:       "Initial Code",
		SnapshotDescription: "Initial code setup with basic example function",
		PollPrompt:          DefaultPrompt,
		Messages: []SeedMessage{
			{
				Text: "How do I use CodeShare?",
				User: User{Name: DefaultUserName},
				Age:  5 * time.Minute,
				Replies: []SeedMessage{
					{
						Text: "You can write and share code. Type code into the editor to create a snapshot, " +
							"and browse saved code from the sidebar on the left.",
						User: instructor,
						Age:  3 * time.Minute,
					},
					{
						Text: "If you have a question, use the chat box at the bottom.",
						User: instructor,
						Age:  2 * time.Minute,
					},
				},
			},
		},
	}
}

// withDefaults 補齊未設定的欄位。
func (s Seed) withDefaults() Seed {
	d := DefaultSeed()
	if s.Code == "" {
		s.Code = d.Code
	}
	if s.SnapshotTitle == "" {
		s.SnapshotTitle = d.SnapshotTitle
	}
	if s.PollPrompt == "" {
		s.PollPrompt = d.PollPrompt
	}
	return s
}
