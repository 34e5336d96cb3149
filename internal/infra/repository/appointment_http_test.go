package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
)

func newRepo(t *testing.T, h http.HandlerFunc, attempts uint) *AppointmentHTTPRepository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAppointmentHTTPRepository(HTTPOptions{BaseURL: srv.URL + "/", Attempts: attempts, Timeout: 2 * time.Second})
}

func TestListByDate_RequestShape(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/grooming/appointments", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("date"))
		w.Write([]byte(`[{"_id": "g1", "timeSlotMinutes": 600}]`))
	}, 1)

	recs, err := repo.ListByDate(context.Background(), domain.ServiceGrooming, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "g1", recs[0].Identifier())
}

func TestDecodeRecords_Shapes(t *testing.T) {
	for raw, want := range map[string]int{
		`[{"_id": "a"}, {"_id": "b"}]`:       2,
		`{"appointments": [{"_id": "a"}]}`:   1,
		`{"data": [{"_id": "a"}]}`:           1,
		`{"ok": true, "message": "nothing"}`: 0,
		``:                                   0,
	} {
		recs, err := decodeRecords([]byte(raw))
		require.NoError(t, err, raw)
		assert.Len(t, recs, want, raw)
	}

	_, err := decodeRecords([]byte(`[{"_id": `))
	assert.Error(t, err)
}

func TestDecodeRecords_SkipsMalformedRecord(t *testing.T) {
	recs, err := decodeRecords([]byte(`[
		{"_id": "v1", "timeSlotMinutes": 540},
		{"_id": "v2", "isPaid": "yes"},
		{"_id": "v3", "extras": [{"name": "Nails", "price": "500"}]},
		{"_id": "v4", "timeSlotMinutes": 600}
	]`))
	require.NoError(t, err)

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.Identifier())
	}
	assert.Equal(t, []string{"v1", "v4"}, ids)
}

func TestListByDate_OneBadRecordKeepsTheDay(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"_id": "a"}, {"_id": "b", "isPaid": "yes"}, {"_id": "c"}]}`))
	}, 1)

	recs, err := repo.ListByDate(context.Background(), domain.ServiceVet, "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestSend_NonSuccessIsStatusError(t *testing.T) {
	var calls int32
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "not yours"}`))
	}, 3)

	_, err := repo.ListByDate(context.Background(), domain.ServiceVet, "2024-06-01")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 403, se.Code)
	assert.Equal(t, "not yours", se.Message)
	assert.Equal(t, 403, StatusCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestSend_RetriesServerErrors(t *testing.T) {
	var calls int32
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}, 3)

	recs, err := repo.ListByDate(context.Background(), domain.ServiceVet, "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSend_HonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}, 1)
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := repo.ListByDate(ctx, domain.ServiceDaycare, "2024-06-01")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListForUser_ForwardsToken(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vet", r.URL.Path)
		assert.Equal(t, "tok-123", r.Header.Get("token"))
		w.Write([]byte(`{"data": [{"id": 7}]}`))
	}, 1)

	recs, err := repo.ListForUser(context.Background(), "tok-123", domain.ServiceVet)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "7", recs[0].Identifier())
}

func TestCreateAppointment(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/daycare/appointments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-06-12", body["dateISO"])

		w.Write([]byte(`{"ok": true, "appointment": {"_id": "d9", "dateISO": "2024-06-12"}}`))
	}, 1)

	rec, err := repo.CreateAppointment(context.Background(), "tok", domain.ServiceDaycare, map[string]any{"dateISO": "2024-06-12"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "d9", rec.Identifier())
}

func TestCreateAppointment_RejectedEnvelope(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "message": "Slot already taken"}`))
	}, 1)

	_, err := repo.CreateAppointment(context.Background(), "tok", domain.ServiceVet, map[string]any{})
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorContains(t, err, "Slot already taken")
}

func TestCreateAppointment_Conflict(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "Time slot already booked"}`))
	}, 2)

	_, err := repo.CreateAppointment(context.Background(), "tok", domain.ServiceVet, map[string]any{})
	assert.Equal(t, http.StatusConflict, StatusCode(err))
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAppointment(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/grooming/g%2F1", r.URL.EscapedPath())
		assert.Equal(t, "tok", r.Header.Get("token"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-06-13", body["dateISO"])

		w.Write([]byte(`{"ok": true, "data": {"_id": "g/1", "dateISO": "2024-06-13"}}`))
	}, 1)

	rec, err := repo.UpdateAppointment(context.Background(), "tok", domain.ServiceGrooming, "g/1", map[string]any{"dateISO": "2024-06-13"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2024-06-13", rec.Day(""))
}

func TestUpdateAppointment_Conflict(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}, 2)

	_, err := repo.UpdateAppointment(context.Background(), "tok", domain.ServiceVet, "v1", map[string]any{})
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
}

func TestStatusError_NotFound(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, 1)

	err := repo.DeleteAppointment(context.Background(), "tok", domain.ServiceVet, "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrSlotTaken)
}

func TestDeleteAppointment_EscapesID(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/grooming/a%2Fb", r.URL.EscapedPath())
		w.Write([]byte(`{"ok": true}`))
	}, 1)

	require.NoError(t, repo.DeleteAppointment(context.Background(), "tok", domain.ServiceGrooming, "a/b"))
}

func TestUploadSlip_Multipart(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/upload-slip", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var order map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("order")), &order))
		assert.Equal(t, "LKR", order["currency"])

		f, hdr, err := r.FormFile("slip")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "slip.pdf", hdr.Filename)
		assert.Equal(t, "application/pdf", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4", string(data))

		w.Write([]byte(`{"ok": true}`))
	}, 1)

	err := repo.UploadSlip(context.Background(), "tok", map[string]any{"currency": "LKR"}, "slip.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
}

func TestMarkPaid(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/mark-paid", r.URL.Path)
		var body struct {
			Items []domain.PaidItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []domain.PaidItem{{ID: "v1", Service: domain.ServiceVet}}, body.Items)
		w.Write([]byte(`{"ok": true}`))
	}, 1)

	require.NoError(t, repo.MarkPaid(context.Background(), "tok", []domain.PaidItem{{ID: "v1", Service: domain.ServiceVet}}))
}

func TestRateLimiterDoesNotBlockSingleCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	repo := NewAppointmentHTTPRepository(HTTPOptions{BaseURL: srv.URL, RPS: 0.5})
	_, err := repo.ListByDate(context.Background(), domain.ServiceVet, "2024-06-01")
	require.NoError(t, err)
}
