package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
)

// --------------------------------------------------
// Errors
// --------------------------------------------------

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s %s: %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("backend %s %s: %d", e.Method, e.Path, e.Code)
}

// Is maps backend statuses onto the domain errors use cases check for.
func (e *StatusError) Is(target error) bool {
	switch target {
	case domain.ErrSlotTaken:
		return e.Code == http.StatusConflict
	case domain.ErrNotFound:
		return e.Code == http.StatusNotFound
	}
	return false
}

// StatusCode extracts the backend status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// ErrRejected is returned when the backend answers 2xx with ok=false.
var ErrRejected = errors.New("backend rejected the request")

// --------------------------------------------------
// Repository
// --------------------------------------------------

type HTTPOptions struct {
	BaseURL  string
	Timeout  time.Duration
	Attempts uint
	RPS      float64
	Client   *http.Client
}

// AppointmentHTTPRepository talks to the pet-care REST backend, which owns
// storage, authorisation and every business rule.
type AppointmentHTTPRepository struct {
	base     string
	client   *http.Client
	attempts uint
	limiter  *rate.Limiter
}

func NewAppointmentHTTPRepository(opts HTTPOptions) *AppointmentHTTPRepository {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	attempts := opts.Attempts
	if attempts == 0 {
		attempts = 1
	}

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		burst := int(opts.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &AppointmentHTTPRepository{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		client:   client,
		attempts: attempts,
		limiter:  limiter,
	}
}

// --------------------------------------------------
// Calendar
// --------------------------------------------------

func (r *AppointmentHTTPRepository) ListByDate(
	ctx context.Context,
	service domain.Service,
	ymd string,
) ([]domain.Record, error) {

	path := "/api/" + string(service) + "/appointments"
	query := url.Values{"date": {ymd}}

	body, err := r.send(ctx, http.MethodGet, path, query, "", nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (r *AppointmentHTTPRepository) ListForUser(
	ctx context.Context,
	token string,
	service domain.Service,
) ([]domain.Record, error) {

	body, err := r.send(ctx, http.MethodGet, "/api/"+string(service), nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

type envelope struct {
	OK          *bool           `json:"ok"`
	Message     string          `json:"message"`
	Error       string          `json:"error"`
	Appointment json.RawMessage `json:"appointment"`
	Data        json.RawMessage `json:"data"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (r *AppointmentHTTPRepository) CreateAppointment(
	ctx context.Context,
	token string,
	service domain.Service,
	payload any,
) (*domain.Record, error) {
	return r.writeAppointment(ctx, http.MethodPost, "/api/"+string(service)+"/appointments", token, service, payload)
}

// UpdateAppointment replaces an existing appointment's booking fields.
func (r *AppointmentHTTPRepository) UpdateAppointment(
	ctx context.Context,
	token string,
	service domain.Service,
	id string,
	payload any,
) (*domain.Record, error) {
	path := "/api/" + string(service) + "/" + url.PathEscape(id)
	return r.writeAppointment(ctx, http.MethodPut, path, token, service, payload)
}

// writeAppointment sends payload as JSON and reads back the stored record
// from an {ok, appointment|data} envelope. A nil record means the backend
// acknowledged without echoing it.
func (r *AppointmentHTTPRepository) writeAppointment(
	ctx context.Context,
	method, path, token string,
	service domain.Service,
	payload any,
) (*domain.Record, error) {

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s appointment: %w", service, err)
	}

	body, err := r.send(ctx, method, path, nil, token,
		func() (io.Reader, string, error) {
			return bytes.NewReader(raw), "application/json", nil
		})
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s appointment response: %w", service, err)
	}
	if env.OK != nil && !*env.OK {
		return nil, fmt.Errorf("%w: %s", ErrRejected, env.message())
	}

	stored := env.Appointment
	if len(stored) == 0 {
		stored = env.Data
	}
	if len(stored) == 0 || bytes.Equal(stored, []byte("null")) {
		return nil, nil
	}

	var rec domain.Record
	if err := json.Unmarshal(stored, &rec); err != nil {
		return nil, fmt.Errorf("decode stored %s appointment: %w", service, err)
	}
	return &rec, nil
}

func (r *AppointmentHTTPRepository) DeleteAppointment(
	ctx context.Context,
	token string,
	service domain.Service,
	id string,
) error {

	path := "/api/" + string(service) + "/" + url.PathEscape(id)
	_, err := r.send(ctx, http.MethodDelete, path, nil, token, nil)
	return err
}

// --------------------------------------------------
// Payments
// --------------------------------------------------

// UploadSlip forwards a bank-transfer slip and its order as multipart form
// fields "slip" and "order".
func (r *AppointmentHTTPRepository) UploadSlip(
	ctx context.Context,
	token string,
	order any,
	filename string,
	contentType string,
	slip []byte,
) error {

	orderJSON, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	_, err = r.send(ctx, http.MethodPost, "/api/payments/upload-slip", nil, token,
		func() (io.Reader, string, error) {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)

			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="slip"; filename=%q`, filename))
			h.Set("Content-Type", contentType)
			part, err := mw.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(slip); err != nil {
				return nil, "", err
			}
			if err := mw.WriteField("order", string(orderJSON)); err != nil {
				return nil, "", err
			}
			if err := mw.Close(); err != nil {
				return nil, "", err
			}
			return &buf, mw.FormDataContentType(), nil
		})
	return err
}

// MarkPaid asks the backend to record payment for items.
func (r *AppointmentHTTPRepository) MarkPaid(
	ctx context.Context,
	token string,
	items []domain.PaidItem,
) error {

	raw, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return fmt.Errorf("encode mark-paid: %w", err)
	}

	_, err = r.send(ctx, http.MethodPost, "/api/payments/mark-paid", nil, token,
		func() (io.Reader, string, error) {
			return bytes.NewReader(raw), "application/json", nil
		})
	return err
}

// --------------------------------------------------
// Transport
// --------------------------------------------------

type bodyFunc func() (io.Reader, string, error)

func (r *AppointmentHTTPRepository) send(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	token string,
	body bodyFunc,
) ([]byte, error) {

	target := r.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var out []byte
	err := retry.Do(
		func() error {
			if r.limiter != nil {
				if err := r.limiter.Wait(ctx); err != nil {
					return retry.Unrecoverable(err)
				}
			}

			var (
				reader      io.Reader
				contentType string
			)
			if body != nil {
				var err error
				if reader, contentType, err = body(); err != nil {
					return retry.Unrecoverable(err)
				}
			}

			req, err := http.NewRequestWithContext(ctx, method, target, reader)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}
			if token != "" {
				req.Header.Set("token", token)
			}

			resp, err := r.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			if err != nil {
				return err
			}

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				se := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
				var env envelope
				if json.Unmarshal(data, &env) == nil {
					se.Message = env.message()
				}
				if resp.StatusCode < 500 {
					return retry.Unrecoverable(se)
				}
				return se
			}

			out = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[backend] retry %d %s %s: %v", n+1, method, path, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decodeRecords accepts a bare array or an object wrapping it under
// "appointments" or "data". Any other JSON shape yields no records. A record
// that does not decode is skipped; the rest of the list survives.
func decodeRecords(body []byte) ([]domain.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []domain.Record{}, nil
	}

	if body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode appointments: %w", err)
		}
		recs := make([]domain.Record, 0, len(items))
		for i, item := range items {
			var rec domain.Record
			if err := json.Unmarshal(item, &rec); err != nil {
				log.Printf("[backend] skipping appointment %d: %v", i, err)
				continue
			}
			recs = append(recs, rec)
		}
		return recs, nil
	}

	var wrapped struct {
		Appointments json.RawMessage `json:"appointments"`
		Data         json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	for _, inner := range []json.RawMessage{wrapped.Appointments, wrapped.Data} {
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '[' {
			return decodeRecords(inner)
		}
	}
	return []domain.Record{}, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentHTTPRepository)(nil)
