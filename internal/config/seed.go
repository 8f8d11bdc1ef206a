// internal/config/seed.go

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"codeshare/internal/classroom"
)

// seedFile 為種子 YAML 的結構，例如：
//
//	code: |
//	  print("hello")
//	snapshot:
//	  title: Starter
//	  description: Week 3 exercise
//	poll_prompt: Ready to move on?
//	messages:
//	  - text: How do I run this?
//	    user: {name: Student}
//	    age: 5m
//	    replies:
//	      - text: Press the run button.
//	        user: {name: Instructor, is_instructor: true}
//	        age: 3m
type seedFile struct {
	Code     string `yaml:"code"`
	Snapshot struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
	} `yaml:"snapshot"`
	PollPrompt string        `yaml:"poll_prompt"`
	Messages   []seedMessage `yaml:"messages"`
}

type seedMessage struct {
	Text string `yaml:"text"`
	User struct {
		Name         string `yaml:"name"`
		IsInstructor bool   `yaml:"is_instructor"`
	} `yaml:"user"`
	Age     string        `yaml:"age"`
	Replies []seedMessage `yaml:"replies"`
}

// LoadSeed 讀取種子 YAML；path 為空時回傳 classroom.DefaultSeed()。
func LoadSeed(path string) (classroom.Seed, error) {
	if path == "" {
		return classroom.DefaultSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return classroom.Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return classroom.Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	msgs, err := convertMessages(f.Messages, 0)
	if err != nil {
		return classroom.Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return classroom.Seed{
		Code:                f.Code,
		SnapshotTitle:       f.Snapshot.Title,
		SnapshotDescription: f.Snapshot.Description,
		PollPrompt:          f.PollPrompt,
		Messages:            msgs,
	}, nil
}

// errNestedReply：問答串只有兩層（問題與回覆），回覆不可再有回覆。
var errNestedReply = errors.New("replies cannot have replies")

func convertMessages(in []seedMessage, depth int) ([]classroom.SeedMessage, error) {
	out := make([]classroom.SeedMessage, 0, len(in))
	for _, m := range in {
		if depth > 0 && len(m.Replies) > 0 {
			return nil, fmt.Errorf("message %q: %w", m.Text, errNestedReply)
		}
		var age time.Duration
		if m.Age != "" {
			d, err := time.ParseDuration(m.Age)
			if err != nil {
				return nil, fmt.Errorf("message %q: age: %w", m.Text, err)
			}
			age = d
		}
		replies, err := convertMessages(m.Replies, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, classroom.SeedMessage{
			Text:    m.Text,
			User:    classroom.User{Name: m.User.Name, IsInstructor: m.User.IsInstructor},
			Age:     age,
			Replies: replies,
		})
	}
	return out, nil
}
