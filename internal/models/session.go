package models

import (
	"encoding/json"
	"time"
)

// SavedSession はsaved_sessionsテーブルのレコードに対応する構造体です。
// 中断したプレイを再開できるように、ゲーム状態全体のスナップショットを
// JSONのまま保持します。中身の検証は復元する側の責任です。
type SavedSession struct {
	UserID    string          `json:"user_id"` // UUID（ユーザーごとに1件）
	State     json.RawMessage `json:"state"`   // GameState のJSONスナップショット
	UpdatedAt time.Time       `json:"updated_at"`
}
