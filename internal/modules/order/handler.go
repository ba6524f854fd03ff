package order

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.With(rbac.Require(rbac.PermOrdersCreate)).Post("/", h.create)                  // POST  /api/v1/orders
		r.With(rbac.Require(rbac.PermOrdersRead)).Get("/", h.list)                       // GET   /api/v1/orders?status=&table=&from=&to=&page=&limit=
		r.With(rbac.Require(rbac.PermOrdersRead)).Get("/{id}", h.get)                    // GET   /api/v1/orders/{id}
		r.With(rbac.Require(rbac.PermOrdersRead)).Get("/number/{number}", h.getByNumber) // GET   /api/v1/orders/number/{number}
		r.With(rbac.Require(rbac.PermOrdersUpdate)).Patch("/{id}/status", h.setStatus)   // PATCH /api/v1/orders/{id}/status
		r.With(rbac.Require(rbac.PermOrdersCancel)).Delete("/{id}", h.cancel)            // DELETE /api/v1/orders/{id}
		r.With(rbac.Require(rbac.PermOrdersUpdate)).Patch("/{id}/lines/{line_id}/prep", h.setLinePrep)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	o, err := h.service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	o, err := h.service.GetByNumber(r.Context(), p, chi.URLParam(r, "number"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	f := ListFilter{Status: Status(r.URL.Query().Get("status"))}
	if v := r.URL.Query().Get("table"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Table = &n
		}
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = &t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = &t
		}
	}
	f.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	f.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.service.List(r.Context(), p, f)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, page)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.SetStatus(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	req := UpdateStatusRequest{Status: string(StatusCancelled)}
	o, err := h.service.SetStatus(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) setLinePrep(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	var req struct {
		PrepStatus string `json:"prep_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	err := h.service.SetLinePrep(r.Context(), p, chi.URLParam(r, "id"), chi.URLParam(r, "line_id"), req.PrepStatus)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, map[string]string{"prep_status": req.PrepStatus})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
