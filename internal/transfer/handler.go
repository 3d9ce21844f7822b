package transfer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/core/events"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/transport"
	"github.com/adportal/adportal/internal/user"
)

type ServiceAPI interface {
	Execute(req Request) (*Record, error)
	List(limit, offset int) ([]*Record, error)
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

type ListResponse struct {
	Transfers []*Record `json:"transfers"`
	Limit     int       `json:"limit"`
	Offset    int       `json:"offset"`
}

// CreateTransfer moves a person to another organizational unit using the
// caller's cached directory credentials.
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	authUser, ok := r.Context().Value(internal.ContextUserKey).(*user.User)
	if !ok || authUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ActorID = authUser.ID
	req.ActorUsername = authUser.Username
	req.IPAddress = internal.ClientIP(r)

	rec, err := h.Service.Execute(req)
	if err != nil {
		switch {
		case err == ErrEmptyLogin || err == ErrEmptyOU || err == ErrSameOU:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		case err == directory.ErrNotFound:
			h.WriteError(w, http.StatusNotFound, "person not found in directory")
		default:
			if appErr, ok := internal.IsAppError(err); ok {
				status, body := appErr.ToHTTPResponse()
				h.WriteJSON(w, status, body)
				return
			}
			h.Logger.Error("CreateTransfer: transfer failed", "error", err, "actor", authUser.Username)
			h.WriteError(w, http.StatusBadGateway, "transfer failed")
		}
		return
	}

	if h.EventBus != nil {
		event := events.NewTransferCompletedEvent(rec.ID, rec.ActorUsername, rec.Login, rec.OldOU, rec.NewOU, rec.Status)
		h.EventBus.Publish(r.Context(), event)
	}

	status := http.StatusCreated
	if rec.Status == StatusFailed {
		status = http.StatusBadGateway
	}
	h.WriteJSON(w, status, rec)
}

func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	records, err := h.Service.List(limit, offset)
	if err != nil {
		h.Logger.Error("ListTransfers: failed to list transfers", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{
		Transfers: records,
		Limit:     limit,
		Offset:    offset,
	})
}
