package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"vindex/internal/vin/decoder"
	"vindex/internal/vin/export"
	"vindex/internal/vin/models"
	"vindex/pkg/platform/httputil"
	"vindex/pkg/requestcontext"
)

// vinPattern rejects malformed VINs at the transport boundary before they
// reach the decode path.
var vinPattern = regexp.MustCompile(`^[A-Za-z0-9]{17}$`)

// Service defines the interface for VIN operations.
type Service interface {
	Resolve(ctx context.Context, vin string) (models.DecodedVehicle, error)
	Remove(ctx context.Context, vin string) (string, error)
	Export(ctx context.Context) (string, error)
}

// Handler wires the VIN endpoints to the service. It delegates all business
// logic so transport concerns remain isolated.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a VIN handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the VIN endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/lookup/{vin}", h.HandleLookup)
	r.Delete("/v1/remove/{vin}", h.HandleRemove)
	r.Get("/v1/export", h.HandleExport)
}

// HandleLookup handles GET /v1/lookup/{vin} requests.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vin, ok := h.vinParam(w, r)
	if !ok {
		return
	}

	record, err := h.service.Resolve(ctx, vin)
	if err != nil {
		var validationErr *decoder.ValidationError
		if errors.As(err, &validationErr) {
			// Decode failures surface their message verbatim.
			httputil.WriteError(w, http.StatusUnprocessableEntity, validationErr.Message)
			return
		}
		h.logger.ErrorContext(ctx, "lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"vin", vin,
			"error", err.Error(),
		)
		httputil.WriteError(w, http.StatusInternalServerError, "An error occurred during VIN lookup.")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleRemove handles DELETE /v1/remove/{vin} requests.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vin, ok := h.vinParam(w, r)
	if !ok {
		return
	}

	message, err := h.service.Remove(ctx, vin)
	if err != nil {
		h.logger.ErrorContext(ctx, "error occurred deleting VIN",
			"request_id", requestcontext.RequestID(ctx),
			"vin", vin,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error":     "Failed to delete VIN from cache.",
			"exception": err.Error(),
		})
		return
	}

	httputil.WriteMessage(w, http.StatusOK, message)
}

// HandleExport handles GET /v1/export requests by streaming the full store
// contents as a parquet download.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path, err := h.service.Export(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "export failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, http.StatusInternalServerError, "An error occurred while exporting the VIN cache."+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	http.ServeFile(w, r, path)
}

// vinParam extracts and validates the vin path segment. A malformed vin is
// rejected here so the core never sees it.
func (h *Handler) vinParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	vin := chi.URLParam(r, "vin")
	if !vinPattern.MatchString(vin) {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "vin must be 17 alphanumeric characters")
		return "", false
	}
	return vin, true
}
