// Package handler exposes the activity service over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"secretsanta/internal/activity/matching"
	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/service"
	id "secretsanta/pkg/domain"
	dErrors "secretsanta/pkg/domain-errors"
	"secretsanta/pkg/platform/httputil"
	"secretsanta/pkg/platform/middleware/credentials"
	"secretsanta/pkg/requestcontext"
)

// Service is the activity service as used by the HTTP layer.
type Service interface {
	CreateActivity(ctx context.Context, in service.CreateActivityInput) (*service.CreatedActivity, error)
	GetActivity(ctx context.Context, activityID id.ActivityID) (*service.ActivitySummary, error)
	GetDashboard(ctx context.Context, adminKey string) (*service.Dashboard, error)
	UpdateActivity(ctx context.Context, activityID id.ActivityID, adminKey string, edit models.Edit) (*models.Activity, error)
	Signup(ctx context.Context, activityID id.ActivityID, in service.SignupInput) (*service.SignupResult, error)
	RemoveParticipant(ctx context.Context, activityID id.ActivityID, adminKey string, participantID id.ParticipantID) error
	Withdraw(ctx context.Context, participantID id.ParticipantID) error
	RunMatching(ctx context.Context, activityID id.ActivityID, adminKey string) (*matching.MatchResult, error)
	RevealSenders(ctx context.Context, activityID id.ActivityID, adminKey string) (*models.Activity, error)
	GetRevealView(ctx context.Context, participantID id.ParticipantID) (*models.RevealView, error)
}

// Handler wires activity endpoints to the activity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an activity handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts activity endpoints on the router. The router must run
// credentials.Extract so capability keys reach the request context.
func (h *Handler) Register(r chi.Router) {
	r.Post("/activities", h.HandleCreateActivity)
	r.Get("/activities/{activityID}", h.HandleGetActivity)
	r.Post("/activities/{activityID}/participants", h.HandleSignup)

	r.Group(func(r chi.Router) {
		r.Use(credentials.RequireAdminKey(h.logger))
		r.Get("/admin/activity", h.HandleDashboard)
		r.Patch("/activities/{activityID}", h.HandleUpdateActivity)
		r.Delete("/activities/{activityID}/participants/{participantID}", h.HandleRemoveParticipant)
		r.Post("/activities/{activityID}/match", h.HandleRunMatching)
		r.Post("/activities/{activityID}/reveal", h.HandleRevealSenders)
	})

	r.Group(func(r chi.Router) {
		r.Use(credentials.RequireParticipantKey(h.logger))
		r.Delete("/participants/me", h.HandleWithdraw)
		r.Get("/reveal", h.HandleRevealView)
	})
}

// HandleCreateActivity handles POST /activities.
func (h *Handler) HandleCreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateActivityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.CreateActivity(ctx, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create activity",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCreateActivityResponse(created))
}

// HandleGetActivity handles GET /activities/{activityID}.
func (h *Handler) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID, ok := h.activityIDParam(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetActivity(ctx, activityID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get activity", activityID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toActivitySummaryResponse(summary))
}

// HandleDashboard handles GET /admin/activity. The admin key alone selects
// the activity.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dashboard, err := h.service.GetDashboard(ctx, requestcontext.AdminKey(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load dashboard",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}

// HandleUpdateActivity handles PATCH /activities/{activityID}.
func (h *Handler) HandleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	activityID, ok := h.activityIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateActivityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	activity, err := h.service.UpdateActivity(ctx, activityID, requestcontext.AdminKey(ctx), req.ToEdit())
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update activity", activityID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toActivityResponse(activity))
}

// HandleSignup handles POST /activities/{activityID}/participants.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	activityID, ok := h.activityIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SignupRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Signup(ctx, activityID, req.ToInput())
	if err != nil {
		h.writeServiceError(ctx, w, "signup failed", activityID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSignupResponse(result))
}

// HandleRemoveParticipant handles DELETE /activities/{activityID}/participants/{participantID}.
func (h *Handler) HandleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID, ok := h.activityIDParam(w, r)
	if !ok {
		return
	}
	participantID, err := id.ParseParticipantID(chi.URLParam(r, "participantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RemoveParticipant(ctx, activityID, requestcontext.AdminKey(ctx), participantID); err != nil {
		h.writeServiceError(ctx, w, "failed to remove participant", activityID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleWithdraw handles DELETE /participants/me.
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participantID, ok := h.participantKey(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(ctx, participantID); err != nil {
		h.logger.WarnContext(ctx, "withdraw failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRunMatching handles POST /activities/{activityID}/match. The
// response confirms the transition but never lists assignments.
func (h *Handler) HandleRunMatching(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID, ok := h.activityIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.RunMatching(ctx, activityID, requestcontext.AdminKey(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "matching failed", activityID, err)
		return
	}

	h.logger.InfoContext(ctx, "activity matched",
		"request_id", requestcontext.RequestID(ctx),
		"activity_id", activityID.String(),
		"participant_count", len(result.Assignments),
	)
	httputil.WriteJSON(w, http.StatusOK, toMatchResponse(result))
}

// HandleRevealSenders handles POST /activities/{activityID}/reveal.
func (h *Handler) HandleRevealSenders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID, ok := h.activityIDParam(w, r)
	if !ok {
		return
	}

	activity, err := h.service.RevealSenders(ctx, activityID, requestcontext.AdminKey(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "reveal senders failed", activityID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toActivityResponse(activity))
}

// HandleRevealView handles GET /reveal.
func (h *Handler) HandleRevealView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	participantID, ok := h.participantKey(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetRevealView(ctx, participantID)
	if err != nil {
		h.logger.WarnContext(ctx, "reveal view failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, toRevealViewResponse(view))
}

func (h *Handler) activityIDParam(w http.ResponseWriter, r *http.Request) (id.ActivityID, bool) {
	activityID, err := id.ParseActivityID(chi.URLParam(r, "activityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ActivityID{}, false
	}
	return activityID, true
}

// participantKey parses the participant credential. A malformed key names no
// participant, so it is reported like an unknown one.
func (h *Handler) participantKey(w http.ResponseWriter, r *http.Request) (id.ParticipantID, bool) {
	participantID, err := id.ParseParticipantID(requestcontext.ParticipantKey(r.Context()))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "participant not found"))
		return id.ParticipantID{}, false
	}
	return participantID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, activityID id.ActivityID, err error) {
	log := h.logger.WarnContext
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodePersistence || code == dErrors.CodeTimeout {
		log = h.logger.ErrorContext
	}
	log(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"activity_id", activityID.String(),
		"error", err,
	)
	httputil.WriteError(w, err)
}
