// cmd/server/main.go

// 本服務提供課堂程式碼分享小工具的 RESTful API：
// 版本快照、編輯器同步、問答區與理解度投票。
// 此檔案負責組裝模組（config, classroom, storage, server），
// 並啟動 HTTP 伺服器；支援啟動時載入與結束時保存教室狀態。

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
