// internal/config/config_test.go

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeshare/internal/classroom"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "memory", c.Backend)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, slog.LevelInfo, c.Level())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codeshare.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
log:
  level: DEBUG
storage:
  backend: sqlite
  sqlite_path: /tmp/x.db
`), 0o644))
	t.Setenv("CODESHARE_SERVER_ADDR", ":9100")

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	// 環境變數優先於設定檔
	assert.Equal(t, ":9100", c.Addr)
	assert.Equal(t, "sqlite", c.Backend)
	assert.Equal(t, "/tmp/x.db", c.SQLitePath)
	assert.Equal(t, slog.LevelDebug, c.Level())
}

func TestLoadRejectsBadValues(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("storage.backend", "redis")
	_, err := Load(v)
	assert.Error(t, err)

	v = viper.New()
	SetDefaults(v)
	v.Set("log.format", "xml")
	_, err = Load(v)
	assert.Error(t, err)

	v = viper.New()
	SetDefaults(v)
	v.Set("server.shutdown_timeout", "0s")
	_, err = Load(v)
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	v := viper.New()
	assert.NoError(t, ReadFile(v, ""))
	assert.Error(t, ReadFile(v, filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestLoadSeed(t *testing.T) {
	def, err := LoadSeed("")
	require.NoError(t, err)
	assert.Equal(t, classroom.DefaultSeed().Code, def.Code)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
code: |
  print("hello")
snapshot:
  title: Starter
  description: Week 3
poll_prompt: Ready?
messages:
  - text: How do I run this?
    user: {name: Student}
    age: 5m
    replies:
      - text: Press run.
        user: {name: Instructor, is_instructor: true}
        age: 3m
`), 0o644))

	s, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, "print(\"hello\")\n", s.Code)
	assert.Equal(t, "Starter", s.SnapshotTitle)
	assert.Equal(t, "Week 3", s.SnapshotDescription)
	assert.Equal(t, "Ready?", s.PollPrompt)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, 5*time.Minute, s.Messages[0].Age)
	require.Len(t, s.Messages[0].Replies, 1)
	assert.True(t, s.Messages[0].Replies[0].User.IsInstructor)
	assert.Equal(t, 3*time.Minute, s.Messages[0].Replies[0].Age)
}

func TestLoadSeedBadAge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("messages:\n  - text: hi\n    age: soon\n"), 0o644))
	_, err := LoadSeed(path)
	assert.Error(t, err)
}

func TestLoadSeedRejectsNestedReplies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
messages:
  - text: Question
    replies:
      - text: Answer
        replies:
          - text: Reply to answer
`), 0o644))
	_, err := LoadSeed(path)
	assert.ErrorIs(t, err, errNestedReply)
}
