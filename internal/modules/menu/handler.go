package menu

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Handler exposes menu HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/menu/items", func(r chi.Router) {
		r.With(rbac.Require(rbac.PermMenuRead)).Get("/", h.list)        // GET    /api/v1/menu/items?category=&active=true
		r.With(rbac.Require(rbac.PermMenuRead)).Get("/{id}", h.get)     // GET    /api/v1/menu/items/{id}
		r.With(rbac.Require(rbac.PermMenuManage)).Post("/", h.create)   // POST   /api/v1/menu/items
		r.With(rbac.Require(rbac.PermMenuManage)).Put("/{id}", h.update) // PUT   /api/v1/menu/items/{id}
		r.With(rbac.Require(rbac.PermMenuManage)).Patch("/{id}/active", h.setActive) // PATCH /api/v1/menu/items/{id}/active
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	var req UpsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item, err := h.service.CreateItem(r.Context(), p, req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusCreated, item)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	item, err := h.service.GetItem(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	items, err := h.service.ListItems(r.Context(), p,
		r.URL.Query().Get("category"),
		r.URL.Query().Get("active") == "true")
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, items)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	var req UpsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item, err := h.service.UpdateItem(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.service.SetItemActive(r.Context(), p, chi.URLParam(r, "id"), req.Active); err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, map[string]bool{"active": req.Active})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
