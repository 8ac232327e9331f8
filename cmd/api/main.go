package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/Brownie996/Bible-block/internal/api/handlers"
	"github.com/Brownie996/Bible-block/internal/api/middleware"
	"github.com/Brownie996/Bible-block/internal/database"
	"github.com/Brownie996/Bible-block/internal/services/bibleapi"
	"github.com/Brownie996/Bible-block/internal/services/phrase"
	"github.com/Brownie996/Bible-block/internal/services/puzzle"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
		}
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("エラー: DATABASE_URL 環境変数が設定されていません。")
	}

	dbService, err := database.NewDatabaseService(databaseURL)
	if err != nil {
		log.Fatalf("データベース初期化に失敗しました: %v", err)
	}

	// リポジトリとサービスの組み立て
	phraseRepo := database.NewPhraseRepository(dbService.DB)
	resultRepo := database.NewResultRepository(dbService.DB)
	sessionRepo := database.NewSessionRepository(dbService.DB)

	bibleService := bibleapi.NewBibleService(os.Getenv("BIBLE_API_TRANSLATION"))
	phraseService := phrase.NewService(phraseRepo, bibleService)
	sessionManager := puzzle.NewSessionManager(phraseService, resultRepo, sessionRepo)

	gameHandler := handlers.NewGameHandler(sessionManager)
	resultHandler := handlers.NewResultHandler(resultRepo, dbService)
	phraseHandler := handlers.NewPhraseHandler(phraseRepo)

	r := mux.NewRouter()
	r.Use(middleware.CORSHandler())

	// 認証不要な公開エンドポイント
	r.HandleFunc("/api/public", handlers.PublicHandler).Methods("GET")
	r.HandleFunc("/api/results", resultHandler.GetRanking).Methods("GET")
	r.HandleFunc("/api/phrases/count", phraseHandler.GetPhraseCount).Methods("GET")

	// WebSocket接続（トークンはクエリパラメータで検証）
	r.HandleFunc("/ws/game/{sessionID}", gameHandler.HandleWebSocketConnection).Methods("GET")

	// 認証が必要なルートグループ
	protectedRouter := r.PathPrefix("/api/protected").Subrouter()
	protectedRouter.Use(middleware.AuthMiddleware)
	protectedRouter.HandleFunc("/game/session", gameHandler.CreateSession).Methods("POST")
	protectedRouter.HandleFunc("/game/session/resume", gameHandler.ResumeSession).Methods("POST")
	protectedRouter.HandleFunc("/game/session/{sessionID}", gameHandler.GetSessionStatus).Methods("GET")
	protectedRouter.HandleFunc("/results/me", resultHandler.GetMyBestScore).Methods("GET")
	protectedRouter.HandleFunc("/phrases/completed", phraseHandler.GetCompletedPhrases).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
