package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/accountd/accountd/internal/platform/httpx"
)

// Handler exposes the registration workflow over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, "register user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if isClientError(err) {
		httpx.RespondError(w, httpx.BadRequest(err))
		return
	}
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func isClientError(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicatePhone) ||
		errors.Is(err, ErrValidation)
}
