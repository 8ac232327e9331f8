package models

import (
	"time"
)

// Result はresultsテーブルのレコードに対応する構造体です。
// 1回のプレイ（ゲームオーバーまで）の最終スコアを表します。
type Result struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"` // UUID
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultResponse はランキングAPIレスポンス用の構造体です。
type ResultResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"` // 表示名（未登録ユーザーは「ゲスト」）
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	Rank      int       `json:"rank"` // ランキング順位
}
