// cmd/server/root_test.go

package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeshare/internal/classroom"
	"codeshare/internal/config"
	"codeshare/internal/storage"
)

func TestRootRejectsUnknownBackend(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--storage", "redis"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "unknown backend")
}

func TestRootRejectsMissingSeed(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--seed", filepath.Join(t.TempDir(), "nope.yaml")})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "read seed")
}

func TestRootRejectsMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "read config")
}

// testConfig 回傳監聽隨機埠、指定後端的設定。
func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Addr:            "127.0.0.1:0",
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "error",
		LogFormat:       "text",
		Backend:         backend,
		JSONPath:        filepath.Join(dir, "data.json"),
		SQLitePath:      filepath.Join(dir, "db", "codeshare.db"),
	}
}

// runBriefly 啟動服務，短暫運行後取消 context，等待正常關閉。
func runBriefly(t *testing.T, cfg config.Config) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, run(ctx, cfg))
}

func openBackend(t *testing.T, cfg config.Config) storage.Backend {
	t.Helper()
	b, err := storage.Open(cfg.Backend, cfg.JSONPath, cfg.SQLitePath)
	require.NoError(t, err)
	return b
}

// TestRunFreshStartPersistsDefaultSession 驗證後端無資料時以單一預設 session 啟動，
// 並於關閉時保存。
func TestRunFreshStartPersistsDefaultSession(t *testing.T) {
	for _, backend := range []string{"json", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			runBriefly(t, cfg)

			b := openBackend(t, cfg)
			defer b.Close()
			st, err := b.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, st.Sessions, 1)
			assert.Equal(t, classroom.DefaultSessionName, st.Sessions[0].Name)
			require.Len(t, st.Sessions[0].Snapshots, 1)
			assert.Equal(t, classroom.InitialCode, st.Sessions[0].Code)
		})
	}
}

// TestRunRestoresSavedState 驗證啟動時還原既有狀態，關閉後內容不變且不另建預設 session。
func TestRunRestoresSavedState(t *testing.T) {
	for _, backend := range []string{"json", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)

			c := classroom.New()
			s := c.Create("kept")
			s.Edit("console.log(2)")
			_, err := s.CreateSnapshot("second", "")
			require.NoError(t, err)
			s.Edit("unsaved")
			_, err = s.Vote("u1", classroom.NeedMore)
			require.NoError(t, err)

			b := openBackend(t, cfg)
			require.NoError(t, b.Save(context.Background(), c.Export()))
			require.NoError(t, b.Close())

			runBriefly(t, cfg)

			b = openBackend(t, cfg)
			defer b.Close()
			st, err := b.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, st.Sessions, 1)
			got := st.Sessions[0]
			assert.Equal(t, s.ID, got.ID)
			assert.Equal(t, "kept", got.Name)
			require.Len(t, got.Snapshots, 2)
			assert.Equal(t, "second", got.Snapshots[0].Title)
			assert.Equal(t, "unsaved", got.Code)
			assert.True(t, got.Dirty)
			assert.Equal(t, map[string]string{"u1": "need_more"}, got.Poll.Votes)
		})
	}
}
