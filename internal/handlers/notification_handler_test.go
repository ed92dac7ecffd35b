// internal/handlers/notification_handler_test.go
package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"go_5_srs_engine/internal/handlers"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/service/mocks"
)

func newNotificationTestRouter(mockService *mocks.MockNotificationService) *chi.Mux {
	notificationHandler := handlers.NewNotificationHandler(mockService, nil)
	router := chi.NewRouter()
	router.Use(middleware.DevLearnerContextMiddleware)
	router.Route("/api/v1/notifications", func(r chi.Router) {
		r.Post("/schedule", notificationHandler.ScheduleReminders)
		r.Post("/{notification_id}/delivery", notificationHandler.RecordDelivery)
	})
	return router
}

func TestNotificationHandler_ScheduleReminders(t *testing.T) {
	learnerID := uuid.New()

	tests := []struct {
		name           string
		learnerID      *uuid.UUID
		setupMock      func(m *mocks.MockNotificationService)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:      "Success - Reminders scheduled",
			learnerID: &learnerID,
			setupMock: func(m *mocks.MockNotificationService) {
				m.On("ScheduleReminders", mock.Anything, learnerID).Return(3, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCount:  3,
		},
		{
			name:      "Success - Nothing to schedule",
			learnerID: &learnerID,
			setupMock: func(m *mocks.MockNotificationService) {
				m.On("ScheduleReminders", mock.Anything, learnerID).Return(0, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "Fail - Missing learner ID header",
			learnerID:      nil,
			setupMock:      func(m *mocks.MockNotificationService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:      "Fail - Learner config not found",
			learnerID: &learnerID,
			setupMock: func(m *mocks.MockNotificationService) {
				m.On("ScheduleReminders", mock.Anything, learnerID).
					Return(0, model.NewAppError("NOT_FOUND", "学習者の設定が見つかりません。", "", model.ErrNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockNotificationService(t)
			tc.setupMock(mockService)
			router := newNotificationTestRouter(mockService)

			req := createRequest(t, "POST", "/api/v1/notifications/schedule", nil, tc.learnerID)
			rr := serveRequest(router, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if rr.Code == http.StatusOK {
				var resp map[string]int
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tc.expectedCount, resp["scheduled"])
			}
		})
	}
}

func TestNotificationHandler_RecordDelivery(t *testing.T) {
	learnerID := uuid.New()
	notificationID := uuid.New()
	responded := true

	tests := []struct {
		name           string
		url            string
		body           interface{}
		setupMock      func(m *mocks.MockNotificationService)
		expectedStatus int
	}{
		{
			name: "Success - Delivery recorded",
			url:  fmt.Sprintf("/api/v1/notifications/%s/delivery", notificationID),
			body: model.RecordDeliveryRequest{Responded: &responded},
			setupMock: func(m *mocks.MockNotificationService) {
				m.On("RecordDelivery", mock.Anything, learnerID, notificationID, true).Return(nil).Once()
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Fail - Invalid notification ID format",
			url:            "/api/v1/notifications/not-a-uuid/delivery",
			body:           model.RecordDeliveryRequest{Responded: &responded},
			setupMock:      func(m *mocks.MockNotificationService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Fail - Missing responded field",
			url:            fmt.Sprintf("/api/v1/notifications/%s/delivery", notificationID),
			body:           map[string]any{},
			setupMock:      func(m *mocks.MockNotificationService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Fail - Notification not found",
			url:  fmt.Sprintf("/api/v1/notifications/%s/delivery", notificationID),
			body: model.RecordDeliveryRequest{Responded: &responded},
			setupMock: func(m *mocks.MockNotificationService) {
				m.On("RecordDelivery", mock.Anything, learnerID, notificationID, true).
					Return(model.NewAppError("NOT_FOUND", "通知が見つかりません。", "notification_id", model.ErrNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Fail - Notification owned by another learner",
			url:  fmt.Sprintf("/api/v1/notifications/%s/delivery", notificationID),
			body: model.RecordDeliveryRequest{Responded: &responded},
			setupMock: func(m *mocks.MockNotificationService) {
				m.On("RecordDelivery", mock.Anything, learnerID, notificationID, true).
					Return(model.NewAppError("FORBIDDEN", "この通知にはアクセスできません。", "", model.ErrForbidden)).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService := mocks.NewMockNotificationService(t)
			tc.setupMock(mockService)
			router := newNotificationTestRouter(mockService)

			req := createRequest(t, "POST", tc.url, tc.body, &learnerID)
			rr := serveRequest(router, req)
			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}
