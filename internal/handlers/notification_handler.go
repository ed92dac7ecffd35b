// internal/handlers/notification_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/service"
	"go_5_srs_engine/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	service service.NotificationService
	logger  *slog.Logger
}

func NewNotificationHandler(s service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		service: s,
		logger:  logger,
	}
}

// ScheduleReminders はリマインダー通知を再計画するためのハンドラ
func (h *NotificationHandler) ScheduleReminders(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "ScheduleReminders"))

	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("learner_id", learnerID.String()))

	scheduled, err := h.service.ScheduleReminders(r.Context(), learnerID)
	if err != nil {
		logger.Error("Error scheduling reminders in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Reminders scheduled successfully", slog.Int("count", scheduled))
	webutil.RespondWithJSON(w, http.StatusOK, map[string]int{"scheduled": scheduled})
}

// RecordDelivery は配信済み通知への反応を記録するためのハンドラ
func (h *NotificationHandler) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RecordDelivery"))

	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("learner_id", learnerID.String()))

	notificationIDStr := chi.URLParam(r, "notification_id")
	notificationID, err := uuid.Parse(notificationIDStr)
	if err != nil {
		logger.Warn("Invalid notification ID format in URL", slog.String("notification_id_str", notificationIDStr), slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_URL_PARAM", "notification_idの形式が正しくありません。", "notification_id", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("notification_id", notificationID.String()))

	var req model.RecordDeliveryRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}
	if req.Responded == nil {
		logger.Warn("RecordDelivery called without responded field")
		appErr := model.NewAppError("VALIDATION_ERROR", "respondedは必須項目です。", "responded", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	err = h.service.RecordDelivery(r.Context(), learnerID, notificationID, *req.Responded)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Notification not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error recording delivery in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Delivery recorded successfully", slog.Bool("responded", *req.Responded))
	w.WriteHeader(http.StatusNoContent)
}
