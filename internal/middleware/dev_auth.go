// internal/middleware/dev_auth.go
package middleware

import (
	"context"
	"log"
	"net/http"

	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/webutil"

	"github.com/google/uuid"
)

// DevLearnerContextMiddleware は開発時用ミドルウェアです。
// X-Learner-ID ヘッダーからUUIDを抽出し、コンテキストに設定します。
// DBでの学習者存在チェックは行いません。
func DevLearnerContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		learnerIDStr := r.Header.Get("X-Learner-ID")
		if learnerIDStr == "" {
			log.Println("[DEV AUTH] Failed: X-Learner-ID header missing")
			webutil.RespondWithError(w, http.StatusUnauthorized, "[DEV] Unauthorized: Missing X-Learner-ID header")
			return
		}

		learnerID, err := uuid.Parse(learnerIDStr)
		if err != nil {
			log.Printf("[DEV AUTH] Failed: Invalid X-Learner-ID format: %s", learnerIDStr)
			webutil.RespondWithError(w, http.StatusUnauthorized, "[DEV] Unauthorized: Invalid X-Learner-ID format")
			return
		}

		// DB検証はスキップ
		log.Printf("[DEV AUTH] Learner ID %s set to context (no validation)", learnerID)

		ctx := context.WithValue(r.Context(), model.LearnerIDKey, learnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
