package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type UserIDKey struct{}

// GetUserIDFromContext はコンテキストからユーザーIDを取得します。
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey{}).(string)
	return userID, ok
}

// writeJSONError はエラーレスポンスをJSON形式で書き込みます。
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// AuthMiddleware はJWTトークンを検証し、ユーザーIDをコンテキストに格納するミドルウェアです。
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// テスト用: 環境変数で認証をバイパス可能にする
		if os.Getenv("BYPASS_AUTH") == "true" {
			testUserID := uuid.New().String()
			log.Printf("AuthMiddleware: BYPASS_AUTH enabled, generated test user ID: %s", testUserID)
			ctx := context.WithValue(r.Context(), UserIDKey{}, testUserID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		// 1. AuthorizationヘッダーからJWTを取得
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeJSONError(w, http.StatusUnauthorized, "Invalid Authorization header format. Must be 'Bearer <token>'")
			return
		}

		// 2. JWT Secretを取得
		jwtSecret := os.Getenv("SUPABASE_JWT_SECRET")
		if jwtSecret == "" {
			log.Println("Error: SUPABASE_JWT_SECRET environment variable is not set.")
			writeJSONError(w, http.StatusInternalServerError, "Server configuration error: JWT secret missing")
			return
		}

		// 3. JWTの検証とパース
		parsedToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			// アルゴリズムがHMACであることを確認
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !parsedToken.Valid {
			log.Printf("AuthMiddleware Error: JWT validation failed: %v", err)
			writeJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		// SupabaseのJWTはユーザーIDを 'sub' (Subject) クレームにUUIDとして格納します。
		userID, ok := claims["sub"].(string)
		if !ok {
			log.Printf("AuthMiddleware Error: JWT claims missing 'sub' (userID): %v", claims["sub"])
			writeJSONError(w, http.StatusUnauthorized, "Invalid token: missing user ID")
			return
		}

		// 4. ユーザーIDをコンテキストに格納して次のハンドラーへ
		ctx := context.WithValue(r.Context(), UserIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
