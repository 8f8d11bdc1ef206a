// internal/classroom/poll.go

package classroom

import "strings"

// Choice 為理解度投票的選項代碼。
type Choice string

const (
	Understood    Choice = "understood"
	NeedMore      Choice = "need_more"
	NotUnderstood Choice = "not_understood"
)

// DefaultPrompt 為預設的投票題目。
const DefaultPrompt = "Did you understand the current content?"

// choices 固定顯示順序：正面 → 中立 → 負面。
var choices = []struct {
	Choice Choice
	Label  string
}{
	{Understood, "I understood"},
	{NeedMore, "I need a bit more explanation"},
	{NotUnderstood, "I did not understand at all"},
}

// ValidChoice 回報 c 是否為既有選項。
func ValidChoice(c Choice) bool {
	for _, o := range choices {
		if o.Choice == c {
			return true
		}
	}
	return false
}

// OptionTally 為單一選項的票數。
type OptionTally struct {
	Choice Choice `json:"choice"`
	Label  string `json:"label"`
	Votes  int    `json:"votes"`
}

// Tally 為投票結果，Options 依固定順序排列。
type Tally struct {
	Prompt  string        `json:"prompt"`
	Options []OptionTally `json:"options"`
	Total   int           `json:"total"`
}

// Poll 為一個理解度投票：每位投票者只算一票，重投會取代前一票。
// defaultPrompt 為建立時的題目（通常來自種子），Reset 未指定題目時回到此值。
type Poll struct {
	prompt        string
	defaultPrompt string
	votes         map[string]Choice
}

// NewPoll 建立空白投票；prompt 為空時使用 DefaultPrompt。
func NewPoll(prompt string) *Poll {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	return &Poll{prompt: prompt, defaultPrompt: prompt, votes: make(map[string]Choice)}
}

// Cast 記錄 voter 的選擇。
func (p *Poll) Cast(voter string, c Choice) error {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return ErrEmptyVoter
	}
	if !ValidChoice(c) {
		return ErrUnknownChoice
	}
	p.votes[voter] = c
	return nil
}

// Tally 統計目前票數。
func (p *Poll) Tally() Tally {
	counts := make(map[Choice]int, len(choices))
	for _, c := range p.votes {
		counts[c]++
	}
	t := Tally{Prompt: p.prompt}
	for _, o := range choices {
		n := counts[o.Choice]
		t.Options = append(t.Options, OptionTally{Choice: o.Choice, Label: o.Label, Votes: n})
		t.Total += n
	}
	return t
}

// Reset 清空所有票並開始新一輪；prompt 為空時回到建立時的題目。
func (p *Poll) Reset(prompt string) {
	if strings.TrimSpace(prompt) == "" {
		prompt = p.defaultPrompt
	}
	p.prompt = prompt
	p.votes = make(map[string]Choice)
}
