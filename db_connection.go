package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq" // PostgreSQLドライバー
	"github.com/joho/godotenv" // .envファイルを読み込むため
)

func main() {
	// .envファイルを読み込む (開発環境の場合)
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: Error loading .env file: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("エラー: DATABASE_URL 環境変数が設定されていません。")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatalf("エラー: データベースへの接続オブジェクト作成に失敗しました: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("エラー: データベースのPingに失敗しました。接続情報やネットワークを確認してください: %v", err)
	}

	fmt.Println("成功: データベースに正常に接続し、Pingが成功しました！")

	// 簡単なクエリで主要テーブルの件数も確認しておく
	var phraseCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM phrases").Scan(&phraseCount); err != nil {
		log.Printf("警告: phrasesテーブルの件数取得に失敗しました: %v", err)
	} else {
		fmt.Printf("登録済み聖句数: %d\n", phraseCount)
	}
}
