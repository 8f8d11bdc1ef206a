// internal/storage/jsonstore.go
//
// 提供 JSON 狀態檔的序列化與反序列化實作。
// 採「原子寫入」策略 (atomic write)：先寫入 .tmp 檔，再以 rename() 取代原檔，
// 寫入中途失敗時原檔不會損壞。
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LoadState 讀取指定路徑的 JSON 狀態檔。
// 檔案不存在時回傳 ErrNoState，讓上層以種子資料啟動。
func LoadState(path string) (State, error) {
	var st State
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, ErrNoState
		}
		return st, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&st); err != nil {
		return st, fmt.Errorf("decode %s: %w", path, err)
	}
	return st, nil
}

// SaveState 將 State 序列化為 JSON 檔案，並採原子方式寫入。
// 流程：
//  1. 設定 Meta.Storage 與當前時間戳。
//  2. 寫入 path+".tmp" 暫存檔。
//  3. 寫入完成後使用 os.Rename() 取代正式檔案。
func SaveState(path string, st State) error {
	st.Meta.Storage = "json_snapshot"
	st.Meta.Timestamp = time.Now()
	if st.Meta.Version == 0 {
		st.Meta.Version = 1
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	// 縮排輸出，方便人工檢視
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	// 原子替換
	return os.Rename(tmp, path)
}

// JSONFile 將 LoadState/SaveState 包裝成 Backend。
type JSONFile struct {
	Path string
}

// NewJSONFile 建立以單一 JSON 檔為儲存的後端。
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (j *JSONFile) Load(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	return LoadState(j.Path)
}

func (j *JSONFile) Save(ctx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return SaveState(j.Path, st)
}

func (j *JSONFile) Close() error { return nil }
