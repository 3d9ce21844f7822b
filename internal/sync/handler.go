package sync

import (
	"net/http"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/core/events"
	"github.com/adportal/adportal/internal/transport"
	"github.com/adportal/adportal/internal/user"
)

type ServiceAPI interface {
	Run(userID int64) (*Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	EventBus *events.Bus
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, bus *events.Bus) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		EventBus:    bus,
	}
}

// RunSync triggers a full directory reconciliation using the caller's own
// cached credentials.
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	authUser, ok := r.Context().Value(internal.ContextUserKey).(*user.User)
	if !ok || authUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.Service.Run(authUser.ID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			status, body := appErr.ToHTTPResponse()
			h.WriteJSON(w, status, body)
			return
		}
		h.Logger.Error("RunSync: sync failed", "error", err, "actor", authUser.Username)
		h.WriteError(w, http.StatusBadGateway, "directory sync failed")
		return
	}

	if h.EventBus != nil {
		event := events.NewSyncCompletedEvent(authUser.Username,
			result.Total, result.Synced, result.Skipped, result.MissingDepartments)
		if err := h.EventBus.PublishSync(r.Context(), event); err != nil {
			h.Logger.Warn("RunSync: event publish failed", "error", err)
		}
	}

	h.WriteJSON(w, http.StatusOK, result)
}
