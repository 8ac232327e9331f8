package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Brownie996/Bible-block/internal/models"
)

// SessionRepository は中断セッションのスナップショット保存・復元を定義するインターフェースです。
// ユーザーごとに最大1件のスナップショットを保持します。
type SessionRepository interface {
	// SaveSnapshot はゲーム状態のJSONスナップショットを保存（上書き）します
	SaveSnapshot(userID string, state json.RawMessage) error

	// LoadSnapshot は保存済みスナップショットを取得します。存在しない場合は (nil, nil) を返します
	LoadSnapshot(userID string) (*models.SavedSession, error)

	// DeleteSnapshot は保存済みスナップショットを削除します（ゲームオーバー時など）
	DeleteSnapshot(userID string) error
}

// sessionRepositoryImpl はSessionRepositoryインターフェースの実装です。
type sessionRepositoryImpl struct {
	db *sql.DB
}

// NewSessionRepository はSessionRepositoryの新しいインスタンスを作成します。
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

// SaveSnapshot はゲーム状態のJSONスナップショットを保存（上書き）します。
func (r *sessionRepositoryImpl) SaveSnapshot(userID string, state json.RawMessage) error {
	query := `
		INSERT INTO saved_sessions (user_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET state = $2, updated_at = $3
	`
	if _, err := r.db.Exec(query, userID, []byte(state), time.Now()); err != nil {
		return fmt.Errorf("セッションスナップショットの保存に失敗しました: %w", err)
	}
	return nil
}

// LoadSnapshot は保存済みスナップショットを取得します。
func (r *sessionRepositoryImpl) LoadSnapshot(userID string) (*models.SavedSession, error) {
	session := &models.SavedSession{}
	var state []byte
	err := r.db.QueryRow(
		`SELECT user_id, state, updated_at FROM saved_sessions WHERE user_id = $1`,
		userID,
	).Scan(&session.UserID, &state, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("セッションスナップショットの取得に失敗しました: %w", err)
	}
	session.State = json.RawMessage(state)
	return session, nil
}

// DeleteSnapshot は保存済みスナップショットを削除します。
func (r *sessionRepositoryImpl) DeleteSnapshot(userID string) error {
	if _, err := r.db.Exec(`DELETE FROM saved_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("セッションスナップショットの削除に失敗しました: %w", err)
	}
	return nil
}
