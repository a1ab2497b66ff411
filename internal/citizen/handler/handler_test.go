package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"municipal/internal/citizen/models"
	"municipal/internal/citizen/service"
	"municipal/internal/citizen/store"
	"municipal/internal/platform/logger"
	"municipal/pkg/testutil"
)

func newCitizenRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := service.New(store.NewInMemory())
	var log *slog.Logger = logger.Discard()
	r := chi.NewRouter()
	New(svc, log).Register(r)
	return r
}

func TestRegisterAndGet(t *testing.T) {
	router := newCitizenRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/citizens", map[string]string{
		"national_id": "12345678",
		"full_name":   "Juan Carlos Delgado Martinez",
		"email":       "juan.delgado@email.com",
		"phone":       "987654321",
		"address":     "Jr. Real 456",
		"district":    "Huancayo",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.DecodeJSON[models.Citizen](t, rr)
	require.NotZero(t, created.ID)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/citizens/"+created.ID.String()))
	testutil.AssertStatusOK(t, rr)
	got := testutil.DecodeJSON[models.Citizen](t, rr)
	assert.Equal(t, "JUAN CARLOS DELGADO MARTINEZ", got.FullName)
	assert.Equal(t, "HUANCAYO", got.District)
}

func TestRegisterValidation(t *testing.T) {
	router := newCitizenRouter(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "short national id",
			body:   map[string]string{"national_id": "1234", "email": "a@b.pe", "phone": "1"},
			status: http.StatusBadRequest,
			code:   "validation_error",
		},
		{
			name:   "missing phone",
			body:   map[string]string{"national_id": "12345678", "email": "a@b.pe"},
			status: http.StatusBadRequest,
			code:   "validation_error",
		},
		{
			name:   "malformed email",
			body:   map[string]string{"national_id": "12345678", "email": "juan@localhost", "phone": "987654321"},
			status: http.StatusBadRequest,
			code:   "validation_error",
		},
		{
			name:   "unknown field",
			body:   map[string]string{"national_id": "12345678", "nickname": "x"},
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/citizens", tt.body))
			testutil.AssertStatusAndError(t, rr, tt.status, tt.code)
		})
	}
}

func TestGetErrors(t *testing.T) {
	router := newCitizenRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/citizens/abc"))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/citizens/77"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
