package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Brownie996/Bible-block/internal/models"
)

// ResultRepository はプレイ結果関連のデータベース操作を定義するインターフェースです。
type ResultRepository interface {
	// SaveResult はゲームオーバー時の最終スコアを保存します
	SaveResult(tx *sql.Tx, userID string, score int) (*models.Result, error)

	// GetRanking はユーザーごとのベストスコアで作った上位N件のランキングを取得します
	GetRanking(limit int) ([]models.ResultResponse, error)

	// GetUserBestScore は指定したユーザーの最高スコアを取得します
	GetUserBestScore(userID string) (*models.Result, error)
}

// resultRepositoryImpl はResultRepositoryインターフェースの実装です。
type resultRepositoryImpl struct {
	db *sql.DB
}

// NewResultRepository はResultRepositoryの新しいインスタンスを作成します。
func NewResultRepository(db *sql.DB) ResultRepository {
	return &resultRepositoryImpl{db: db}
}

// SaveResult はゲームオーバー時の最終スコアを保存します。
func (r *resultRepositoryImpl) SaveResult(tx *sql.Tx, userID string, score int) (*models.Result, error) {
	now := time.Now()
	query := `INSERT INTO results (user_id, score, created_at) VALUES ($1, $2, $3) RETURNING id`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRow(query, userID, score, now)
	} else {
		row = r.db.QueryRow(query, userID, score, now)
	}

	var id int64
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("プレイ結果レコードの作成に失敗しました: %w", err)
	}

	return &models.Result{
		ID:        id,
		UserID:    userID,
		Score:     score,
		CreatedAt: now,
	}, nil
}

// GetRanking はユーザーごとのベストスコアで作った上位N件のランキングを取得します。
// 同一ユーザーが複数回プレイしていても、ランキングには最高スコア1件だけが載ります。
func (r *resultRepositoryImpl) GetRanking(limit int) ([]models.ResultResponse, error) {
	query := `
		SELECT id, user_id, score, created_at,
			ROW_NUMBER() OVER (ORDER BY score DESC, created_at ASC) AS rank
		FROM (
			SELECT DISTINCT ON (user_id) id, user_id, score, created_at
			FROM results
			ORDER BY user_id, score DESC, created_at ASC
		) best
		ORDER BY score DESC, created_at ASC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ランキングの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []models.ResultResponse
	for rows.Next() {
		var result models.ResultResponse
		if err := rows.Scan(&result.ID, &result.UserID, &result.Score, &result.CreatedAt, &result.Rank); err != nil {
			return nil, fmt.Errorf("ランキングデータのスキャンに失敗しました: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ランキング取得中にエラーが発生しました: %w", err)
	}
	return results, nil
}

// GetUserBestScore は指定したユーザーの最高スコアを取得します。
// スコアが存在しない場合は (nil, nil) を返します。
func (r *resultRepositoryImpl) GetUserBestScore(userID string) (*models.Result, error) {
	query := `
		SELECT id, user_id, score, created_at
		FROM results
		WHERE user_id = $1
		ORDER BY score DESC, created_at ASC
		LIMIT 1
	`

	var result models.Result
	err := r.db.QueryRow(query, userID).Scan(&result.ID, &result.UserID, &result.Score, &result.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの最高スコア取得に失敗しました: %w", err)
	}
	return &result, nil
}
