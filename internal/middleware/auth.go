package middleware

import (
	"context"
	"net/http"

	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/webutil"

	"github.com/google/uuid"
)

// LearnerVerifier は学習者IDの存在確認に使うインターフェースです。
// service パッケージへの依存を避けるためここで定義します。
type LearnerVerifier interface {
	Exists(ctx context.Context, learnerID uuid.UUID) (bool, error)
}

// LearnerAuthMiddleware は X-Learner-ID ヘッダーを検証するミドルウェアです。
// ヘッダーのUUIDが登録済み学習者であることを確認し、コンテキストに設定します。
func LearnerAuthMiddleware(verifier LearnerVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			learnerIDStr := r.Header.Get("X-Learner-ID")
			if learnerIDStr == "" {
				logger.Warn("Learner auth failed: X-Learner-ID header missing")
				appErr := model.NewAppError("UNAUTHORIZED", "X-Learner-IDヘッダーが必要です。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			learnerID, err := uuid.Parse(learnerIDStr)
			if err != nil {
				logger.Warn("Learner auth failed: Invalid X-Learner-ID format", "learner_id", learnerIDStr)
				appErr := model.NewAppError("UNAUTHORIZED", "X-Learner-IDの形式が正しくありません。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			exists, err := verifier.Exists(r.Context(), learnerID)
			if err != nil {
				logger.Error("Learner auth failed: Verification error", "learner_id", learnerID, "error", err)
				appErr := model.NewAppError("INTERNAL_SERVER_ERROR", "学習者の確認に失敗しました。", "", model.ErrInternalServer)
				webutil.HandleError(w, logger, appErr)
				return
			}
			if !exists {
				logger.Warn("Learner auth failed: Unknown learner", "learner_id", learnerID)
				appErr := model.NewAppError("UNAUTHORIZED", "学習者が登録されていません。", "", model.ErrForbidden)
				webutil.HandleError(w, logger, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), model.LearnerIDKey, learnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLearnerIDFromContext はコンテキストから学習者IDを取得します。
func GetLearnerIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(model.LearnerIDKey).(uuid.UUID)
	if !ok {
		// ミドルウェアが正しく動作していない等の内部エラー
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストから学習者情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}
