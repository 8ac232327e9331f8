package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq" // PostgreSQLドライバー
)

// DatabaseService はデータベース接続を保持し、各リポジトリの土台になります。
type DatabaseService struct {
	DB *sql.DB
}

// NewDatabaseService はデータベースに接続し、新しいDatabaseServiceを返します。
// 接続確認のためPingまで行います。
func NewDatabaseService(databaseURL string) (*DatabaseService, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Printf("DatabaseService Error: sql.Openに失敗しました: %v", err)
		return nil, fmt.Errorf("データベースへの接続オブジェクト作成に失敗しました: %w", err)
	}

	// データベース接続の確認 (Ping)
	if err := db.Ping(); err != nil {
		log.Printf("DatabaseService Error: db.Pingに失敗しました: %v", err)
		return nil, fmt.Errorf("データベースのPingに失敗しました。接続情報やネットワークを確認してください: %w", err)
	}

	log.Println("データベースに正常に接続しました。")
	return &DatabaseService{DB: db}, nil
}

// GetUserDisplayNameByUserID は指定されたユーザーIDの表示名を取得します。
// ユーザーが存在しない、または表示名が空の場合は「ゲスト」を返します。
func (s *DatabaseService) GetUserDisplayNameByUserID(userID string) string {
	var userName sql.NullString
	query := `SELECT user_name FROM users WHERE id = $1`
	err := s.DB.QueryRow(query, userID).Scan(&userName)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("DatabaseService Error: ユーザー名の取得に失敗しました: %v, 「ゲスト」を返します", err)
		}
		return "ゲスト"
	}
	if !userName.Valid || userName.String == "" {
		return "ゲスト"
	}
	return userName.String
}
