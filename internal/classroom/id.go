// internal/classroom/id.go

package classroom

import "github.com/google/uuid"

// IDGenerator 產生唯一字串識別碼。
type IDGenerator func() string

// UUIDv7 產生可依時間排序的 RFC 9562 UUID v7。
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed 在 gen 產生的 ID 前加上固定前綴，例如 "ses_"、"msg_"。
func Prefixed(prefix string, gen IDGenerator) IDGenerator {
	return func() string {
		return prefix + gen()
	}
}
