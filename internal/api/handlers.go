// Package api exposes HTTP handlers for submission validation.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vibe-with-wyn/green-roots/internal/auth"
	"github.com/vibe-with-wyn/green-roots/internal/domain"
	"github.com/vibe-with-wyn/green-roots/internal/observability"
	httptransport "github.com/vibe-with-wyn/green-roots/internal/transport/http"
)

const maxDecisionBodyBytes = 64 << 10

// DecisionRecorder records validation decisions.
type DecisionRecorder interface {
	RecordValidationDecision(ctx context.Context, d domain.Decision) (domain.Outcome, error)
}

// PhotoSource returns submission photos for authorised callers.
type PhotoSource interface {
	SubmissionPhoto(ctx context.Context, caller domain.Caller, submissionID int64) (*domain.Photo, error)
}

// Options tunes handler behaviour.
type Options struct {
	PhotoCacheMaxAge time.Duration
	// Location resolves validated_at values sent without an offset.
	Location *time.Location
}

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	decisions DecisionRecorder
	photos    PhotoSource
	logger    *slog.Logger
	opts      Options
}

// NewHandler builds a Handler.
func NewHandler(decisions DecisionRecorder, photos PhotoSource, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PhotoCacheMaxAge <= 0 {
		opts.PhotoCacheMaxAge = 5 * time.Minute
	}
	return &Handler{decisions: decisions, photos: photos, logger: logger, opts: opts}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", healthz)
	r.Post("/v1/submissions/decisions", h.recordDecision)
	r.Get("/v1/submissions/{submissionID}/photo", h.submissionPhoto)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) recordDecision(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeDecision(w, http.StatusUnauthorized, DecisionResponse{Error: "unauthorized"})
		return
	}
	if !claims.HasRole(domain.RoleValidator) {
		writeDecision(w, http.StatusForbidden, DecisionResponse{Error: "forbidden"})
		return
	}

	var req DecisionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDecisionBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeDecision(w, http.StatusBadRequest, DecisionResponse{Error: "invalid input: " + decodeProblem(err)})
		return
	}
	if err := req.Validate(); err != nil {
		writeDecision(w, http.StatusBadRequest, DecisionResponse{Error: "invalid input: " + err.Error()})
		return
	}
	decision, err := req.ToDecision(h.opts.Location)
	if err != nil {
		writeDecision(w, http.StatusBadRequest, DecisionResponse{Error: err.Error()})
		return
	}

	outcome, err := h.decisions.RecordValidationDecision(r.Context(), decision)
	if err != nil {
		if domain.IsValidation(err) {
			writeDecision(w, http.StatusBadRequest, DecisionResponse{Error: err.Error()})
			return
		}
		requestID := httptransport.RequestIDFromContext(r.Context())
		h.logger.ErrorContext(r.Context(), "decision failed",
			"submission_id", decision.SubmissionID, "request_id", requestID, "error", err)
		writeDecision(w, http.StatusInternalServerError, DecisionResponse{Error: "internal error", RequestID: requestID})
		return
	}

	h.logger.InfoContext(r.Context(), "decision recorded",
		"submission_id", decision.SubmissionID,
		"status", decision.Status,
		"validator_id", claims.UserID,
		"activity_match", outcome.ActivityMatch,
		"credited", outcome.Credited,
	)
	writeDecision(w, http.StatusOK, DecisionResponse{Success: true})
}

func (h *Handler) submissionPhoto(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	submissionID, err := strconv.ParseInt(chi.URLParam(r, "submissionID"), 10, 64)
	if err != nil || submissionID <= 0 {
		observability.RecordPhotoRequest("invalid")
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid submission id")
		return
	}

	photo, err := h.photos.SubmissionPhoto(r.Context(), domain.Caller{UserID: claims.UserID, Role: claims.Role}, submissionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			observability.RecordPhotoRequest("forbidden")
			writeError(w, r, http.StatusForbidden, "forbidden", "validator access required")
		case errors.Is(err, domain.ErrNotFound):
			observability.RecordPhotoRequest("not_found")
			writeError(w, r, http.StatusNotFound, "not_found", "submission photo not found")
		case domain.IsValidation(err):
			observability.RecordPhotoRequest("invalid")
			writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			observability.RecordPhotoRequest("error")
			h.logger.ErrorContext(r.Context(), "photo lookup failed",
				"submission_id", submissionID, "request_id", httptransport.RequestIDFromContext(r.Context()), "error", err)
			writeError(w, r, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	observability.RecordPhotoRequest("served")
	w.Header().Set("Content-Type", photo.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo.Data)))
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(h.opts.PhotoCacheMaxAge.Seconds())))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(photo.Data)
}

func decodeProblem(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String())
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return "body too large"
	}
	return "unable to parse body"
}

func writeDecision(w http.ResponseWriter, status int, resp DecisionResponse) {
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{
		Type:      code,
		Detail:    detail,
		RequestID: httptransport.RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
