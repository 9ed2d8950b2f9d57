package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offseason/shoe-cleaning-email/internal/email"
	"github.com/offseason/shoe-cleaning-email/internal/lifecycle"
	"github.com/offseason/shoe-cleaning-email/internal/orders"
	"github.com/offseason/shoe-cleaning-email/internal/redisx"
)

type fakeNotifier struct {
	out  lifecycle.Outcome
	err  error
	reqs []lifecycle.Request
}

func (f *fakeNotifier) Notify(_ context.Context, req lifecycle.Request) (lifecycle.Outcome, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return lifecycle.Outcome{OrderReference: req.OrderReference}, f.err
	}
	out := f.out
	out.OrderReference = req.OrderReference
	out.TrackingNumber = req.TrackingNumber
	return out, nil
}

func okOutcome() lifecycle.Outcome {
	return lifecycle.Outcome{
		CustomerEmail:       "jane@example.com",
		CustomerEmailSent:   true,
		BusinessEmailSent:   true,
		MessageID:           "msg_1",
		EstimatedCompletion: "Sunday, 18 October 2026",
		EstimatedDelivery:   "Friday, 16 October 2026",
	}
}

func newTestRouter(n Notifier) *chi.Mux {
	r := NewRouter(RouterConfig{
		ServiceName:    "shoe-cleaning-email-service",
		ServiceVersion: "1.0.0",
		CORSOrigins:    []string{"http://localhost:3000", "https://offseasonshoes.com"},
		Timeout:        5 * time.Second,
	})
	(&LifecycleHandler{Service: n, MaxLabelBytes: 1 << 20}).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func labelRequest(t *testing.T, orderReference, contentType string, label []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if orderReference != "" {
		require.NoError(t, mw.WriteField("orderReference", orderReference))
	}
	if label != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="label"; filename="label.pdf"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(label)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/send-label", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRootAndHealth(t *testing.T) {
	r := newTestRouter(&fakeNotifier{})

	rec, body := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Len(t, body["endpoints"], len(endpoints))

	rec, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	r := newTestRouter(&fakeNotifier{})

	rec, body := do(t, r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "The requested endpoint was not found", body["message"])

	rec, body = do(t, r, httptest.NewRequest(http.MethodGet, "/shipment-received", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", body["error"])
}

func TestPanicBecomesJSON500(t *testing.T) {
	r := newTestRouter(&fakeNotifier{})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	rec, body := do(t, r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Equal(t, "kaboom", body["message"])
}

func TestCORS(t *testing.T) {
	r := newTestRouter(&fakeNotifier{})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/shipment-received", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, "https://offseasonshoes.com", preflight("https://offseasonshoes.com").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight("https://evil.example").Header().Get("Access-Control-Allow-Origin"))
}

func TestPrettyJSON(t *testing.T) {
	r := newTestRouter(&fakeNotifier{})

	rec, _ := do(t, r, httptest.NewRequest(http.MethodGet, "/?pretty", nil))
	assert.Contains(t, rec.Body.String(), "\n  \"")

	rec, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, rec.Body.String(), "\n  \"")
}

func TestShipmentReceived(t *testing.T) {
	n := &fakeNotifier{out: okOutcome()}
	rec, body := do(t, newTestRouter(n), jsonRequest("/shipment-received", `{"orderReference":"OS-1001"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Shipment received notification sent successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "OS-1001", data["orderReference"])
	assert.Equal(t, "jane@example.com", data["customerEmail"])
	assert.Equal(t, true, data["customerEmailSent"])
	assert.Equal(t, true, data["businessEmailSent"])
	assert.Equal(t, "msg_1", data["messageId"])
	assert.Equal(t, "Sunday, 18 October 2026", data["estimatedCompletion"])

	require.Len(t, n.reqs, 1)
	assert.Equal(t, lifecycle.ShipmentReceived, n.reqs[0].Event)
	assert.NotEmpty(t, n.reqs[0].TraceID)
}

func TestJSONValidation(t *testing.T) {
	cases := map[string]string{
		"missing reference": `{}`,
		"empty reference":   `{"orderReference":""}`,
		"malformed":         `{"orderReference":`,
	}
	for name, payload := range cases {
		for _, path := range []string{"/shipment-received", "/ready-to-ship"} {
			t.Run(name+" "+path, func(t *testing.T) {
				n := &fakeNotifier{out: okOutcome()}
				rec, body := do(t, newTestRouter(n), jsonRequest(path, payload))
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, false, body["success"])
				assert.NotEmpty(t, body["error"])
				assert.Empty(t, n.reqs)
			})
		}
	}
}

func TestReadyToShipTrackingNumber(t *testing.T) {
	t.Run("echoed", func(t *testing.T) {
		n := &fakeNotifier{out: okOutcome()}
		rec, body := do(t, newTestRouter(n), jsonRequest("/ready-to-ship", `{"orderReference":"OS-1001","trackingNumber":"RM1"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "RM1", data["trackingNumber"])
		assert.Equal(t, "Friday, 16 October 2026", data["estimatedDelivery"])
		assert.Equal(t, "RM1", n.reqs[0].TrackingNumber)
	})

	t.Run("null when absent", func(t *testing.T) {
		rec, body := do(t, newTestRouter(&fakeNotifier{out: okOutcome()}), jsonRequest("/ready-to-ship", `{"orderReference":"OS-1001"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		data := body["data"].(map[string]any)
		v, ok := data["trackingNumber"]
		assert.True(t, ok)
		assert.Nil(t, v)
	})
}

func TestPipelineFailures(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		path    string
		message string
	}{
		{"unknown order", fmt.Errorf("%w: OS-404", orders.ErrOrderNotFound), http.StatusInternalServerError,
			"/shipment-received", "Failed to send shipment received notification"},
		{"customer send", fmt.Errorf("failed to send customer email: %w", email.Result{Error: "rejected"}.Err()), http.StatusInternalServerError,
			"/ready-to-ship", "Failed to send ready-to-ship notification"},
		{"status update after send", fmt.Errorf("%w: OS-1001", orders.ErrStatusNotUpdated), http.StatusInternalServerError,
			"/shipment-received", "Failed to send shipment received notification"},
		{"validation", fmt.Errorf("%w: bad", lifecycle.ErrValidation), http.StatusBadRequest,
			"/ready-to-ship", "Failed to send ready-to-ship notification"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := do(t, newTestRouter(&fakeNotifier{err: tc.err}), jsonRequest(tc.path, `{"orderReference":"OS-1001"}`))
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"])
			assert.Equal(t, tc.err.Error(), body["error"])
			assert.NotContains(t, body, "data")
		})
	}
}

func TestSendLabel(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake label")

	t.Run("success", func(t *testing.T) {
		n := &fakeNotifier{out: okOutcome()}
		rec, body := do(t, newTestRouter(n), labelRequest(t, "OS-1001", "application/pdf", pdf))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Shipping label email sent successfully", body["message"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "OS-1001", data["orderReference"])
		assert.NotContains(t, data, "estimatedCompletion")

		require.Len(t, n.reqs, 1)
		assert.Equal(t, lifecycle.LabelReady, n.reqs[0].Event)
		assert.Equal(t, pdf, n.reqs[0].Label)
	})

	t.Run("wrong type", func(t *testing.T) {
		n := &fakeNotifier{out: okOutcome()}
		rec, body := do(t, newTestRouter(n), labelRequest(t, "OS-1001", "image/png", pdf))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Label must be a PDF file", body["message"])
		assert.Equal(t, "Invalid file type: image/png", body["error"])
		assert.Empty(t, n.reqs)
	})

	t.Run("missing file", func(t *testing.T) {
		n := &fakeNotifier{out: okOutcome()}
		rec, body := do(t, newTestRouter(n), labelRequest(t, "OS-1001", "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Label PDF file is required", body["message"])
		assert.Equal(t, "Missing label file in form data", body["error"])
		assert.Empty(t, n.reqs)
	})

	t.Run("missing reference", func(t *testing.T) {
		n := &fakeNotifier{out: okOutcome()}
		rec, body := do(t, newTestRouter(n), labelRequest(t, "", "application/pdf", pdf))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Order reference is required", body["message"])
		assert.Empty(t, n.reqs)
	})

	t.Run("unknown order", func(t *testing.T) {
		n := &fakeNotifier{err: fmt.Errorf("%w: OS-404", orders.ErrOrderNotFound)}
		rec, body := do(t, newTestRouter(n), labelRequest(t, "OS-404", "application/pdf", pdf))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Failed to send shipping label email", body["message"])
		assert.NotEmpty(t, body["error"])
	})
}

type fakeStatusReader struct {
	status orders.Status
	err    error
	calls  int
}

func (f *fakeStatusReader) GetOrderStatus(context.Context, string) (orders.Status, error) {
	f.calls++
	return f.status, f.err
}

func TestOrderStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := &fakeStatusReader{status: orders.StatusReceived}
	r := newTestRouter(&fakeNotifier{})
	(&StatusHandler{Orders: store, Redis: rdb}).Register(r)

	// miss: store, then backfill
	rec, body := do(t, r, httptest.NewRequest(http.MethodGet, "/orders/OS-1001/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "received", data["status"])
	assert.Equal(t, false, data["cached"])
	assert.Equal(t, 1, store.calls)

	cs, ok, err := redisx.GetStatus(context.Background(), rdb, "OS-1001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "received", cs.Status)

	// hit
	rec, body = do(t, r, httptest.NewRequest(http.MethodGet, "/orders/OS-1001/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["data"].(map[string]any)["cached"])
	assert.Equal(t, 1, store.calls)
}

func TestOrderStatusErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		r := newTestRouter(&fakeNotifier{})
		(&StatusHandler{Orders: &fakeStatusReader{err: fmt.Errorf("%w: OS-404", orders.ErrOrderNotFound)}}).Register(r)
		rec, body := do(t, r, httptest.NewRequest(http.MethodGet, "/orders/OS-404/status", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("store error", func(t *testing.T) {
		r := newTestRouter(&fakeNotifier{})
		(&StatusHandler{Orders: &fakeStatusReader{err: fmt.Errorf("connection reset")}}).Register(r)
		rec, body := do(t, r, httptest.NewRequest(http.MethodGet, "/orders/OS-1/status", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "connection reset", body["error"])
	})
}

func TestPipelineFailureIsNotLoggedTwice(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	n := &fakeNotifier{err: fmt.Errorf("%w: OS-404", orders.ErrOrderNotFound)}
	rec, _ := do(t, newTestRouter(n), jsonRequest("/shipment-received", `{"orderReference":"OS-404"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, logs.String(), `"level":"ERROR"`)
}
