package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/workboard-api/internal/api/shared"
	"github.com/phrazzld/workboard-api/internal/platform/logger"
	"github.com/phrazzld/workboard-api/internal/service"
)

// AdminHandler handles administrative actions.
type AdminHandler struct {
	tasks  service.LifecycleService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(tasks service.LifecycleService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "admin_handler")),
	}
}

// RunReport handles POST /api/admin/reports. An empty or missing body sends
// to the configured recipients.
func (h *AdminHandler) RunReport(w http.ResponseWriter, r *http.Request) {
	var req RunReportRequest
	if r.ContentLength != 0 {
		if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
			return
		}
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.tasks.RunReportNow(r.Context(), req.Recipients)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to run report")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("report run on demand",
		slog.String("actor", actorFromRequest(r)),
		slog.String("report_ref", result.Fingerprint),
		slog.Int("sent", result.Sent()))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// SendTestEmail handles POST /api/admin/notifications/test.
func (h *AdminHandler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req TestEmailRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	out := h.tasks.SendTestEmail(r.Context(), req.To)
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
