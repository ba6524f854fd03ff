package outlet

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkaseba/mesa-pos-backend/internal/apperr"
	"github.com/tkaseba/mesa-pos-backend/internal/modules/rbac"
)

// Handler exposes outlet HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/outlets", func(r chi.Router) {
		r.Use(rbac.Require(rbac.PermOutletsManage))
		r.Post("/", h.create)       // POST  /api/v1/outlets
		r.Get("/", h.list)          // GET   /api/v1/outlets
		r.Get("/{id}", h.get)       // GET   /api/v1/outlets/{id}
		r.Put("/{id}", h.update)    // PUT   /api/v1/outlets/{id}
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOutletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.Create(r.Context(), req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	outlets, err := h.service.List(r.Context())
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, outlets)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req CreateOutletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, apperr.Status(err), apperr.Body(err))
		return
	}
	respond(w, http.StatusOK, o)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
