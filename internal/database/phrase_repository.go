package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Brownie996/Bible-block/internal/models"
)

// PhraseRepository は聖句関連のデータベース操作を定義するインターフェースです。
type PhraseRepository interface {
	// GetRandomUncompletedPhrase は指定ユーザーが未回収の聖句をランダムに1件取得します。
	// 全聖句を回収済みの場合は全体からランダムに1件返します（周回プレイ）。
	GetRandomUncompletedPhrase(userID string) (*models.Phrase, error)

	// GetPhraseByID は指定されたIDの聖句を取得します。存在しない場合は (nil, nil) を返します。
	GetPhraseByID(phraseID string) (*models.Phrase, error)

	// MarkPhraseCompleted は聖句の回収完了を記録します。既に記録済みの場合は何もしません。
	MarkPhraseCompleted(tx *sql.Tx, userID, phraseID string) error

	// GetCompletedPhrases は指定ユーザーの回収済み聖句の一覧を取得します。
	GetCompletedPhrases(userID string) ([]models.CompletedPhrase, error)

	// CountPhrases は登録されている聖句の総数を返します。
	CountPhrases() (int, error)
}

// phraseRepositoryImpl はPhraseRepositoryインターフェースの実装です。
type phraseRepositoryImpl struct {
	db *sql.DB
}

// NewPhraseRepository はPhraseRepositoryの新しいインスタンスを作成します。
func NewPhraseRepository(db *sql.DB) PhraseRepository {
	return &phraseRepositoryImpl{db: db}
}

// GetRandomUncompletedPhrase は指定ユーザーが未回収の聖句をランダムに1件取得します。
func (r *phraseRepositoryImpl) GetRandomUncompletedPhrase(userID string) (*models.Phrase, error) {
	query := `
		SELECT id, reference, text FROM phrases
		WHERE id NOT IN (SELECT phrase_id FROM completed_phrases WHERE user_id = $1)
		ORDER BY random()
		LIMIT 1
	`
	phrase := &models.Phrase{}
	err := r.db.QueryRow(query, userID).Scan(&phrase.ID, &phrase.Reference, &phrase.Text)
	if err == sql.ErrNoRows {
		// 全聖句を回収済み。全体からランダムに選んで周回させる。
		err = r.db.QueryRow(`SELECT id, reference, text FROM phrases ORDER BY random() LIMIT 1`).
			Scan(&phrase.ID, &phrase.Reference, &phrase.Text)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("聖句が1件も登録されていません")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("聖句の取得に失敗しました: %w", err)
	}
	return phrase, nil
}

// GetPhraseByID は指定されたIDの聖句を取得します。
func (r *phraseRepositoryImpl) GetPhraseByID(phraseID string) (*models.Phrase, error) {
	phrase := &models.Phrase{}
	err := r.db.QueryRow(`SELECT id, reference, text FROM phrases WHERE id = $1`, phraseID).
		Scan(&phrase.ID, &phrase.Reference, &phrase.Text)
	if err == sql.ErrNoRows {
		return nil, nil // 存在しない場合はnilを返す
	}
	if err != nil {
		return nil, fmt.Errorf("聖句の取得に失敗しました: %w", err)
	}
	return phrase, nil
}

// MarkPhraseCompleted は聖句の回収完了を記録します。
func (r *phraseRepositoryImpl) MarkPhraseCompleted(tx *sql.Tx, userID, phraseID string) error {
	query := `
		INSERT INTO completed_phrases (user_id, phrase_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, phrase_id) DO NOTHING
	`
	var err error
	if tx != nil {
		_, err = tx.Exec(query, userID, phraseID, time.Now())
	} else {
		_, err = r.db.Exec(query, userID, phraseID, time.Now())
	}
	if err != nil {
		return fmt.Errorf("聖句の回収記録に失敗しました: %w", err)
	}
	return nil
}

// GetCompletedPhrases は指定ユーザーの回収済み聖句の一覧を取得します。
func (r *phraseRepositoryImpl) GetCompletedPhrases(userID string) ([]models.CompletedPhrase, error) {
	rows, err := r.db.Query(
		`SELECT user_id, phrase_id, completed_at FROM completed_phrases WHERE user_id = $1 ORDER BY completed_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("回収済み聖句の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var completed []models.CompletedPhrase
	for rows.Next() {
		var c models.CompletedPhrase
		if err := rows.Scan(&c.UserID, &c.PhraseID, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("回収済み聖句のスキャンに失敗しました: %w", err)
		}
		completed = append(completed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("回収済み聖句のイテレーション中にエラーが発生しました: %w", err)
	}
	return completed, nil
}

// CountPhrases は登録されている聖句の総数を返します。
func (r *phraseRepositoryImpl) CountPhrases() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM phrases`).Scan(&count); err != nil {
		return 0, fmt.Errorf("聖句数の取得に失敗しました: %w", err)
	}
	return count, nil
}
