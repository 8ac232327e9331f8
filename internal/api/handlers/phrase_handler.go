package handlers

import (
	"log"
	"net/http"

	"github.com/Brownie996/Bible-block/internal/database"
)

// PhraseHandler は聖句関連のハンドラーを管理する構造体です。
type PhraseHandler struct {
	phraseRepo database.PhraseRepository
}

// NewPhraseHandler は新しいPhraseHandlerインスタンスを作成します。
func NewPhraseHandler(phraseRepo database.PhraseRepository) *PhraseHandler {
	return &PhraseHandler{phraseRepo: phraseRepo}
}

// GetPhraseCount は登録されている聖句の総数を返すハンドラーです。
// GET /api/phrases/count
func (h *PhraseHandler) GetPhraseCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.phraseRepo.CountPhrases()
	if err != nil {
		log.Printf("聖句数取得エラー: %v", err)
		http.Error(w, "聖句数の取得に失敗しました", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true, "count": count})
}

// GetCompletedPhrases はログイン中ユーザーの回収済み聖句一覧を返すハンドラーです。
// GET /api/protected/phrases/completed
func (h *PhraseHandler) GetCompletedPhrases(w http.ResponseWriter, r *http.Request) {
	userID, err := ExtractUserIDFromContext(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, "認証情報が見つかりません")
		return
	}

	completed, err := h.phraseRepo.GetCompletedPhrases(userID)
	if err != nil {
		log.Printf("回収済み聖句取得エラー (user %s): %v", userID, err)
		http.Error(w, "回収済み聖句の取得に失敗しました", http.StatusInternalServerError)
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true, "completed": completed})
}
