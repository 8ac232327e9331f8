package handlers

import (
	"encoding/json"
	"net/http"
)

// PublicHandler は認証不要のヘルスチェック用エンドポイントです。
func PublicHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"message": "Bible-block API is running",
	})
}
