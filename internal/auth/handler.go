package auth

import (
	"encoding/json"
	"net/http"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/transport"
	"github.com/adportal/adportal/internal/user"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserByID(id int64) (*user.User, error)
	Logout(userID int64)
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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Warn("login failed", "error", err, "username", dto.Username, "ip", internal.ClientIP(r))

		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "Active Directory rejected the credentials. Check username and password.")
		case ErrUserInactive:
			h.WriteError(w, http.StatusForbidden, "user account is inactive")
		case ErrUserNotProvisioned:
			h.WriteError(w, http.StatusForbidden, "account verified but not provisioned locally, run a directory sync first")
		case ErrDirectoryUnavailable:
			h.WriteError(w, http.StatusBadGateway, "directory unavailable")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		switch err {
		case ErrInvalidToken, ErrTokenExpired:
			h.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		case ErrUserInactive:
			h.WriteError(w, http.StatusForbidden, "user account is inactive")
		default:
			h.Logger.Error("token refresh failed", "error", err)
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout drops the caller's cached directory credentials. The JWT itself
// stays valid until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	authUser, ok := r.Context().Value(internal.ContextUserKey).(*user.User)
	if !ok || authUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.Service.Logout(authUser.ID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
