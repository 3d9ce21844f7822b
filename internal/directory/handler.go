package directory

import (
	"encoding/json"
	"net/http"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/transport"
	"github.com/adportal/adportal/internal/user"
)

// AdminSession is the write side of a directory session used by the
// administration endpoints.
type AdminSession interface {
	SearchAll(attributes []string) ([]Entry, error)
	CreatePerson(attrs PersonAttributes) (string, error)
	SetPassword(dn, plaintext string) error
	Delete(dn string) error
	Close()
}

type AdminConnector interface {
	Connect(login, password string) (AdminSession, error)
}

// Handler exposes directory administration over HTTP. Every operation runs
// with the caller's own cached credentials, so directory ACLs stay in
// charge of what each operator may do.
type Handler struct {
	*transport.BaseHandler
	cache     *credcache.Cache
	connector AdminConnector
}

func NewHandler(baseHandler *transport.BaseHandler, cache *credcache.Cache, connector AdminConnector) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		cache:       cache,
		connector:   connector,
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (AdminSession, *user.User, bool) {
	authUser, ok := r.Context().Value(internal.ContextUserKey).(*user.User)
	if !ok || authUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, nil, false
	}

	creds, ok := h.cache.Get(authUser.ID)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "cached directory credentials expired, log in again")
		return nil, nil, false
	}

	session, err := h.connector.Connect(creds.Login, creds.Password)
	if err != nil {
		h.Logger.Error("directory connect failed", "error", err, "actor", authUser.Username)
		h.WriteError(w, http.StatusBadGateway, "directory unavailable")
		return nil, nil, false
	}
	return session, authUser, true
}

type PersonsResponse struct {
	Persons []Entry `json:"persons"`
}

// ListPersons returns every person entry under the search base.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.session(w, r)
	if !ok {
		return
	}
	defer session.Close()

	entries, err := session.SearchAll(ProfileAttributes)
	if err != nil {
		h.Logger.Error("ListPersons: search failed", "error", err)
		h.WriteError(w, http.StatusBadGateway, "directory search failed")
		return
	}

	h.WriteJSON(w, http.StatusOK, PersonsResponse{Persons: entries})
}

type CreatePersonDTO struct {
	Login       string `json:"login"`
	GivenName   string `json:"given_name"`
	Surname     string `json:"surname"`
	DisplayName string `json:"display_name"`
	Mail        string `json:"mail"`
	Telephone   string `json:"telephone"`
	OU          string `json:"ou"`
	Password    string `json:"password"`
}

// CreatePerson adds a user to the directory and, when a password is given,
// sets it in the same session.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var dto CreatePersonDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.Login == "" || dto.OU == "" {
		h.WriteError(w, http.StatusBadRequest, "login and ou are required")
		return
	}

	session, authUser, ok := h.session(w, r)
	if !ok {
		return
	}
	defer session.Close()

	dn, err := session.CreatePerson(PersonAttributes{
		Login:       dto.Login,
		GivenName:   dto.GivenName,
		Surname:     dto.Surname,
		DisplayName: dto.DisplayName,
		Mail:        dto.Mail,
		Telephone:   dto.Telephone,
		OU:          dto.OU,
	})
	if err != nil {
		h.Logger.Error("CreatePerson: directory rejected the add", "error", err, "login", dto.Login, "actor", authUser.Username)
		h.WriteError(w, http.StatusBadGateway, "directory rejected the new person")
		return
	}

	if dto.Password != "" {
		if err := session.SetPassword(dn, dto.Password); err != nil {
			h.Logger.Error("CreatePerson: person created but password not set", "error", err, "dn", dn)
			h.WriteJSON(w, http.StatusCreated, map[string]string{
				"dn":      dn,
				"warning": "person created but the password could not be set",
			})
			return
		}
	}

	h.Logger.Info("person created in directory", "dn", dn, "actor", authUser.Username)
	h.WriteJSON(w, http.StatusCreated, map[string]string{"dn": dn})
}

type SetPasswordDTO struct {
	DN       string `json:"dn"`
	Password string `json:"password"`
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var dto SetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.DN == "" || dto.Password == "" {
		h.WriteError(w, http.StatusBadRequest, "dn and password are required")
		return
	}

	session, authUser, ok := h.session(w, r)
	if !ok {
		return
	}
	defer session.Close()

	if err := session.SetPassword(dto.DN, dto.Password); err != nil {
		h.Logger.Error("SetPassword: directory rejected the change", "error", err, "dn", dto.DN, "actor", authUser.Username)
		h.WriteError(w, http.StatusBadGateway, "directory rejected the password change")
		return
	}

	h.Logger.Info("directory password changed", "dn", dto.DN, "actor", authUser.Username)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "password set"})
}

type DeletePersonDTO struct {
	DN string `json:"dn"`
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	var dto DeletePersonDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.DN == "" {
		h.WriteError(w, http.StatusBadRequest, "dn is required")
		return
	}

	session, authUser, ok := h.session(w, r)
	if !ok {
		return
	}
	defer session.Close()

	if err := session.Delete(dto.DN); err != nil {
		h.Logger.Error("DeletePerson: directory rejected the delete", "error", err, "dn", dto.DN, "actor", authUser.Username)
		h.WriteError(w, http.StatusBadGateway, "directory rejected the delete")
		return
	}

	h.Logger.Info("person deleted from directory", "dn", dto.DN, "actor", authUser.Username)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
