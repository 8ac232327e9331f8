package handlers

import (
	"context"

	"github.com/Brownie996/Bible-block/internal/api/middleware"
)

// GetUserIDFromContext はコンテキストからユーザーIDを取得します。
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	return middleware.GetUserIDFromContext(ctx)
}
