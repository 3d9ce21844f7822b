package employee

import (
	"net/http"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/transport"
	"github.com/adportal/adportal/internal/user"
)

type ServiceAPI interface {
	GetProfile(userID int64, username string) (*Profile, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetMyProfile serves the authenticated user's profile merged with live
// directory attributes when a directory session can be opened.
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	authUser, ok := r.Context().Value(internal.ContextUserKey).(*user.User)
	if !ok || authUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.Service.GetProfile(authUser.ID, authUser.Username)
	if err != nil {
		if err == ErrNotFound {
			h.WriteError(w, http.StatusNotFound, "employee profile not found, run a directory sync first")
			return
		}
		h.Logger.Error("GetMyProfile: failed to build profile", "error", err, "username", authUser.Username)
		h.WriteError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}
