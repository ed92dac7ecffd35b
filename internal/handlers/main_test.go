// internal/handlers/main_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// createRequest はテスト用のHTTPリクエストオブジェクトを作成します。
// learnerIDが指定されていれば X-Learner-ID ヘッダーを追加します。
func createRequest(t *testing.T, method, url string, body interface{}, learnerID *uuid.UUID) *http.Request {
	var reqBodyBytes []byte
	var err error

	if body != nil {
		switch b := body.(type) {
		case string:
			reqBodyBytes = []byte(b)
		case []byte:
			reqBodyBytes = b
		default:
			reqBodyBytes, err = json.Marshal(body)
			if err != nil {
				t.Fatalf("Failed to marshal request body: %v", err)
			}
		}
	}

	var bodyReader *bytes.Buffer
	if reqBodyBytes != nil {
		bodyReader = bytes.NewBuffer(reqBodyBytes)
	} else {
		bodyReader = bytes.NewBuffer([]byte{})
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if learnerID != nil {
		req.Header.Set("X-Learner-ID", learnerID.String())
	}
	return req
}

// serveRequest はルーターに対してリクエストを実行し、レコーダーを返します。
func serveRequest(router *chi.Mux, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// assertErrorResponse はエラーレスポンスのボディにメッセージが含まれることを検証します。
func assertErrorResponse(t *testing.T, bodyBytes []byte) {
	t.Helper()
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	err := json.Unmarshal(bodyBytes, &errResp)
	assert.NoError(t, err, "Failed to unmarshal error response body")
	assert.NotEmpty(t, errResp.Error.Message, "Error message should not be empty")
}
