// internal/storage/backend.go
//
// Backend 介面讓 server 與 main 不需知道狀態實際存在哪裡。
// 目前提供三種實作：Memory（不持久化）、JSONFile、SQLite。
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoState 代表後端尚未保存過任何狀態（首次啟動）。
var ErrNoState = errors.New("no saved state")

// Backend 為持久化後端的共同介面。
type Backend interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Close() error
}

// Memory 為不做任何持久化的後端：Save 直接丟棄，Load 永遠回傳 ErrNoState。
// 對應「所有狀態僅存在於記憶體、重啟即遺失」的預設行為。
type Memory struct{}

func (Memory) Load(context.Context) (State, error) { return State{}, ErrNoState }
func (Memory) Save(context.Context, State) error   { return nil }
func (Memory) Close() error                        { return nil }

// Open 依名稱建立後端："memory"、"json"、"sqlite"。
func Open(kind, jsonPath, sqlitePath string) (Backend, error) {
	switch kind {
	case "", "memory":
		return Memory{}, nil
	case "json":
		return NewJSONFile(jsonPath), nil
	case "sqlite":
		return OpenSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", kind)
	}
}
