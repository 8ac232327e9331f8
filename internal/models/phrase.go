package models

import "time"

// Phrase はphrasesテーブルのレコードに対応する構造体です。
// 1つの聖句（盤面に隠されるテキストとその出典）を表します。
// ラウンドに選ばれた後は不変として扱います。
type Phrase struct {
	ID        string `json:"id"`        // UUID
	Reference string `json:"reference"` // 出典 (例: "ヨハネ 3:16")
	Text      string `json:"text"`      // 盤面に散りばめるテキスト本体
}

// CompletedPhrase はcompleted_phrasesテーブルのレコードに対応する構造体です。
// ユーザーがどの聖句を回収し終えたかを記録します。
type CompletedPhrase struct {
	UserID      string    `json:"user_id"`   // UUID
	PhraseID    string    `json:"phrase_id"` // UUID
	CompletedAt time.Time `json:"completed_at"`
}
