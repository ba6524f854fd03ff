package staff

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Handler exposes staff management HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/staff", func(r chi.Router) {
		r.Use(rbac.Require(rbac.PermStaffManage))
		r.Post("/", h.create)                  // POST   /api/v1/staff
		r.Get("/", h.list)                     // GET    /api/v1/staff
		r.Get("/{id}", h.get)                  // GET    /api/v1/staff/{id}
		r.Patch("/{id}/role", h.updateRole)    // PATCH  /api/v1/staff/{id}/role
		r.Delete("/{id}", h.deactivate)        // DELETE /api/v1/staff/{id}
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	member, err := h.service.Create(r.Context(), req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusCreated, member)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, member)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := rbac.PrincipalFrom(r.Context())
	members, err := h.service.ListByOutlet(r.Context(), p.OutletID)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, members)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	member, err := h.service.UpdateRole(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, member)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
