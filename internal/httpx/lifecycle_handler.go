package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/offseason/shoe-cleaning-email/internal/lifecycle"
)

const defaultMaxLabelBytes = 10 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type Notifier interface {
	Notify(ctx context.Context, req lifecycle.Request) (lifecycle.Outcome, error)
}

type LifecycleHandler struct {
	Service       Notifier
	MaxLabelBytes int64
}

type ShipmentReceivedReq struct {
	OrderReference string `json:"orderReference" validate:"required"`
}

type ReadyToShipReq struct {
	OrderReference string `json:"orderReference" validate:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

type notificationData struct {
	OrderReference    string `json:"orderReference"`
	CustomerEmail     string `json:"customerEmail"`
	CustomerEmailSent bool   `json:"customerEmailSent"`
	BusinessEmailSent bool   `json:"businessEmailSent"`
	MessageID         string `json:"messageId,omitempty"`
}

type shipmentReceivedData struct {
	notificationData
	EstimatedCompletion string `json:"estimatedCompletion"`
}

type readyToShipData struct {
	notificationData
	EstimatedDelivery string  `json:"estimatedDelivery"`
	TrackingNumber    *string `json:"trackingNumber"`
}

func (h *LifecycleHandler) Register(r chi.Router) {
	r.Post("/send-label", h.sendLabel)
	r.Post("/shipment-received", h.shipmentReceived)
	r.Post("/ready-to-ship", h.readyToShip)
}

func (h *LifecycleHandler) sendLabel(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxLabelBytes
	if limit <= 0 {
		limit = defaultMaxLabelBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeJSON(w, r, http.StatusBadRequest, ApiResponse{Message: "Invalid form data", Error: err.Error()})
		return
	}

	orderReference := r.FormValue("orderReference")
	if orderReference == "" {
		writeJSON(w, r, http.StatusBadRequest, ApiResponse{
			Message: "Order reference is required",
			Error:   "Missing orderReference in form data",
		})
		return
	}

	file, header, err := r.FormFile("label")
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, ApiResponse{
			Message: "Label PDF file is required",
			Error:   "Missing label file in form data",
		})
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "application/pdf" {
		writeJSON(w, r, http.StatusBadRequest, ApiResponse{
			Message: "Label must be a PDF file",
			Error:   "Invalid file type: " + ct,
		})
		return
	}
	label, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, ApiResponse{Message: "Label PDF file is required", Error: err.Error()})
		return
	}

	out, err := h.Service.Notify(r.Context(), lifecycle.Request{
		Event:          lifecycle.LabelReady,
		OrderReference: orderReference,
		Label:          label,
		TraceID:        middleware.GetReqID(r.Context()),
	})
	if err != nil {
		h.fail(w, r, "Failed to send shipping label email", err)
		return
	}
	writeJSON(w, r, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Shipping label email sent successfully",
		Data:    baseData(out),
	})
}

func (h *LifecycleHandler) shipmentReceived(w http.ResponseWriter, r *http.Request) {
	var req ShipmentReceivedReq
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.Service.Notify(r.Context(), lifecycle.Request{
		Event:          lifecycle.ShipmentReceived,
		OrderReference: req.OrderReference,
		TraceID:        middleware.GetReqID(r.Context()),
	})
	if err != nil {
		h.fail(w, r, "Failed to send shipment received notification", err)
		return
	}
	writeJSON(w, r, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Shipment received notification sent successfully",
		Data:    shipmentReceivedData{notificationData: baseData(out), EstimatedCompletion: out.EstimatedCompletion},
	})
}

func (h *LifecycleHandler) readyToShip(w http.ResponseWriter, r *http.Request) {
	var req ReadyToShipReq
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.Service.Notify(r.Context(), lifecycle.Request{
		Event:          lifecycle.ReadyToShip,
		OrderReference: req.OrderReference,
		TrackingNumber: req.TrackingNumber,
		TraceID:        middleware.GetReqID(r.Context()),
	})
	if err != nil {
		h.fail(w, r, "Failed to send ready-to-ship notification", err)
		return
	}
	data := readyToShipData{notificationData: baseData(out), EstimatedDelivery: out.EstimatedDelivery}
	if out.TrackingNumber != "" {
		tn := out.TrackingNumber
		data.TrackingNumber = &tn
	}
	writeJSON(w, r, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Ready-to-ship notification sent successfully",
		Data:    data,
	})
}

func baseData(out lifecycle.Outcome) notificationData {
	return notificationData{
		OrderReference:    out.OrderReference,
		CustomerEmail:     out.CustomerEmail,
		CustomerEmailSent: out.CustomerEmailSent,
		BusinessEmailSent: out.BusinessEmailSent,
		MessageID:         out.MessageID,
	}
}

// decodeJSON writes the 400 itself and reports whether the handler may go on.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, r, http.StatusBadRequest, ApiResponse{Message: "Invalid JSON body", Error: err.Error()})
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "OrderReference" {
			writeJSON(w, r, http.StatusBadRequest, ApiResponse{Message: "Order reference is required", Error: err.Error()})
			return false
		}
		writeJSON(w, r, http.StatusBadRequest, ApiResponse{Message: "Invalid request", Error: err.Error()})
		return false
	}
	return true
}

// fail maps a pipeline error to the envelope. Notify has already logged it
// with the order context. Validation problems are a 400; everything else is a 500.
func (h *LifecycleHandler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, lifecycle.ErrValidation) {
		code = http.StatusBadRequest
	}
	writeJSON(w, r, code, ApiResponse{Message: message, Error: err.Error()})
}
