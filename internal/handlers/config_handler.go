// internal/handlers/config_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/service"
	"go_5_srs_engine/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type ConfigHandler struct {
	service service.LearnerService
	logger  *slog.Logger
}

func NewConfigHandler(s service.LearnerService, logger *slog.Logger) *ConfigHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigHandler{
		service: s,
		logger:  logger,
	}
}

// RegisterLearner は学習者をデフォルト設定で登録するためのハンドラ (認証不要)
func (h *ConfigHandler) RegisterLearner(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RegisterLearner"))

	var req model.RegisterLearnerRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.Any("errors", validationErrors.Error()))

			firstErr := validationErrors[0]
			translatedMsg := firstErr.Translate(webutil.Trans)

			appErr := model.NewAppError(
				"VALIDATION_ERROR",
				translatedMsg,
				firstErr.Field(),
				model.ErrInvalidInput,
			)
			webutil.HandleError(w, logger, appErr)
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return
	}

	cfg, err := h.service.RegisterLearner(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Warn("Learner registration conflict", slog.Any("error", err))
		} else {
			logger.Error("Error registering learner in service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Learner registered successfully", slog.String("learner_id", cfg.LearnerID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, cfg)
}

// GetConfig は学習者設定を取得するためのハンドラ
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetConfig"))

	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("learner_id", learnerID.String()))

	cfg, err := h.service.GetConfig(r.Context(), learnerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Info("Config not found in service", slog.Any("error", err))
		} else {
			logger.Error("Error getting config from service", slog.Any("error", err))
		}
		webutil.HandleError(w, logger, err)
		return
	}

	webutil.RespondWithJSON(w, http.StatusOK, cfg)
}

// PatchConfig は学習者設定の一部を更新するためのハンドラ
func (h *ConfigHandler) PatchConfig(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PatchConfig"))

	learnerID, err := middleware.GetLearnerIDFromContext(r.Context())
	if err != nil {
		logger.Warn("Unauthorized access attempt", slog.String("error", err.Error()))
		appErr := model.NewAppError("UNAUTHORIZED", "認証情報が見つかりません。", "", model.ErrForbidden)
		webutil.HandleError(w, logger, appErr)
		return
	}
	logger = logger.With(slog.String("learner_id", learnerID.String()))

	var req model.PatchUserConfigRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.Any("errors", validationErrors.Error()), slog.Any("request", req))

			firstErr := validationErrors[0]
			translatedMsg := firstErr.Translate(webutil.Trans)

			appErr := model.NewAppError(
				"VALIDATION_ERROR",
				translatedMsg,
				firstErr.Field(),
				model.ErrInvalidInput,
			)
			webutil.HandleError(w, logger, appErr)
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return
	}

	cfg, err := h.service.UpdateConfig(r.Context(), learnerID, &req)
	if err != nil {
		logger.Error("Error updating config in service", slog.Any("error", err), slog.Any("request", req))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Config updated successfully")
	webutil.RespondWithJSON(w, http.StatusOK, cfg)
}
