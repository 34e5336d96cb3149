package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/petcare-scheduler/internal/usecase/calendar"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", httperr.ValidationError{Fields: map[string]string{"date": "x"}}, 422, "validation_failed"},
		{"business default", httperr.ErrBusiness("slip_required"), 400, "slip_required"},
		{"business wrapped", fmt.Errorf("vet v1: %w", httperr.ErrBusiness("order_item_paid")), 409, "order_item_paid"},
		{"conflict", httperr.ErrBusiness("time_conflict"), 409, "time_conflict"},
		{"superseded", calendar.ErrSuperseded, 409, "superseded"},
		{"rejected", fmt.Errorf("%w: slot gone", repository.ErrRejected), 422, "backend_rejected"},
		{"timeout", fmt.Errorf("list: %w", context.DeadlineExceeded), 504, "backend_timeout"},
		{"upstream 403", &repository.StatusError{Code: 403}, 403, "forbidden"},
		{"upstream 503", &repository.StatusError{Code: 503}, 502, "backend_error"},
		{"unknown", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			writeError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body httperr.HTTPError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}
