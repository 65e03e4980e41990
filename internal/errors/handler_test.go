package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedep/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "wrapped context canceled",
			err:        fmt.Errorf("render: %w", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api validation error",
			err:        ErrValidation("area", "must be one of the subject areas"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantDetail: "Request validation failed",
		},
		{
			name:       "api not found",
			err:        NotFoundError("school"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantDetail: "school not found",
		},
		{
			name:       "dataset not loaded",
			err:        New(http.StatusServiceUnavailable, "DATASET_NOT_LOADED", "No dataset loaded"),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetNotLoaded,
		},
		{
			name:       "app validation error",
			err:        NewAppValidationError("branch requires a school"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantDetail: "branch requires a school",
		},
		{
			name:       "app unavailable error",
			err:        NewUnavailableError("dataset not loaded", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeServiceDown,
		},
		{
			name:       "app storage error hides detail",
			err:        NewStorageError("open /secret/path.xlsx", fmt.Errorf("permission denied")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantDetail: "An unexpected error occurred while processing your request",
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/dashboard", body["instance"])
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
		})
	}
}

func TestErrorHandler_NilErrorWritesNothing(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
	assert.Zero(t, logs.Count())
}

func TestErrorHandler_LogsBySeverity(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	handler.HandleError(httptest.NewRecorder(), req, ErrValidation("chart", "bad"))
	testutil.AssertNoErrors(t, logs)

	handler.HandleError(httptest.NewRecorder(), req, fmt.Errorf("boom"))
	assert.Len(t, logs.GetRecordsByLevel(slog.LevelError), 1)
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))

	assert.Contains(t, decodeProblem(t, rec), "stack")
}

func TestErrorHandler_APIErrorDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), ErrValidation("area", "unknown"))

	body := decodeProblem(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "area", details["field"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/panic", nil), "kaboom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotContains(t, body, "panic")
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/areas", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}

func TestFromValidator(t *testing.T) {
	type selection struct {
		Area  string `validate:"required,oneof=reading math_literacy"`
		Chart string `validate:"oneof=bar pie"`
	}

	err := validator.New().Struct(selection{Area: "", Chart: "donut"})
	require.Error(t, err)

	apiErr := FromValidator(err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	details, ok := apiErr.Details.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, details.Errors, 2)
	assert.Equal(t, ValidationError{Field: "area", Message: "is required"}, details.Errors[0])
	assert.Equal(t, ValidationError{Field: "chart", Message: "must be one of: bar pie"}, details.Errors[1])
}

func TestFromValidator_NonValidationError(t *testing.T) {
	apiErr := FromValidator(fmt.Errorf("not a struct"))
	assert.Equal(t, "INVALID_REQUEST", apiErr.ErrorCode)
	assert.Equal(t, "not a struct", apiErr.Details)
}

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("sheet missing")
	err := NewParsingError("read workbook", cause).WithContext("sheet", "Sayfa1")

	assert.Equal(t, "[PARSING] read workbook: sheet missing", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Sayfa1", err.Context["sheet"])

	assert.Equal(t, "[NOT_FOUND] school not found", NewNotFoundError("school").Error())
	assert.Equal(t, ErrTypeConfig, NewConfigError("bad", nil).Type)
}

func TestNewMissingColumnError(t *testing.T) {
	err := NewMissingColumnError("Sayfa1", "Şube")
	assert.Equal(t, ErrTypeParsing, err.Type)
	assert.Equal(t, `[PARSING] "Şube" column not found`, err.Error())
	assert.Equal(t, map[string]interface{}{"sheet": "Sayfa1", "column": "Şube"}, err.Context)

	err = NewMissingColumnError("", "Okul")
	assert.NotContains(t, err.Context, "sheet")

	logger, _ := testutil.NewTestLogger(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	NewErrorHandler(logger, false).HandleError(rec, req, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]interface{}{"column": "Okul"}, decodeProblem(t, rec)["context"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/x").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(400), body["status"], "extensions cannot override standard members")
	assert.Equal(t, "abc", body["trace_id"])
	assert.NotContains(t, body, "detail")
}
