package payment

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Handler exposes payment HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.With(rbac.Require(rbac.PermPaymentsProcess)).Post("/", h.record)             // POST /api/v1/payments
		r.With(rbac.Require(rbac.PermPaymentsRead)).Get("/{id}", h.get)                // GET  /api/v1/payments/{id}
		r.With(rbac.Require(rbac.PermPaymentsRead)).Get("/order/{order_id}", h.listByOrder) // GET /api/v1/payments/order/{order_id}
		r.With(rbac.Require(rbac.PermPaymentsRefund)).Post("/{id}/refund", h.refund)   // POST /api/v1/payments/{id}/refund
	})
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	pay, err := h.service.Record(r.Context(), p, req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusCreated, pay)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	pay, err := h.service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, pay)
}

func (h *Handler) listByOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	payments, err := h.service.ListByOrder(r.Context(), p, chi.URLParam(r, "order_id"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, payments)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	pay, err := h.service.Refund(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, pay)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
