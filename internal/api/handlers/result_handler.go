package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Brownie996/Bible-block/internal/database"
)

// ResultHandler はプレイ結果関連のハンドラーを管理する構造体です。
type ResultHandler struct {
	resultRepo database.ResultRepository
	dbService  *database.DatabaseService
}

// NewResultHandler は新しいResultHandlerインスタンスを作成します。
func NewResultHandler(resultRepo database.ResultRepository, dbService *database.DatabaseService) *ResultHandler {
	return &ResultHandler{
		resultRepo: resultRepo,
		dbService:  dbService,
	}
}

// GetRanking は上位ランキングを取得するハンドラーです。
// GET /api/results?limit=50
func (h *ResultHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	// limitパラメータを取得（デフォルト50、上限100）
	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	results, err := h.resultRepo.GetRanking(limit)
	if err != nil {
		log.Printf("ランキング取得エラー: %v", err)
		http.Error(w, "ランキング取得に失敗しました", http.StatusInternalServerError)
		return
	}

	// ランキング行に表示名を付ける
	for i := range results {
		results[i].UserName = h.dbService.GetUserDisplayNameByUserID(results[i].UserID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// GetMyBestScore はログイン中ユーザーの最高スコアを取得するハンドラーです。
// GET /api/protected/results/me
func (h *ResultHandler) GetMyBestScore(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, "認証情報が見つかりません")
		return
	}

	best, err := h.resultRepo.GetUserBestScore(userID)
	if err != nil {
		log.Printf("最高スコア取得エラー (user %s): %v", userID, err)
		http.Error(w, "最高スコア取得に失敗しました", http.StatusInternalServerError)
		return
	}
	if best == nil {
		WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true, "result": nil})
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true, "result": best})
}
