package department

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adportal/adportal/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAll() ([]*Department, error)
	Create(dto CreateDepartmentDTO) (*Department, error)
	Delete(id int64) error
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

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.GetAll()
	if err != nil {
		h.Logger.Error("GetDepartments: failed to list departments", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}

	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.Create(dto)
	if err != nil {
		switch err {
		case ErrEmptyName:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		case ErrNameTaken:
			h.WriteError(w, http.StatusConflict, err.Error())
		default:
			h.Logger.Error("CreateDepartment: failed to create department", "error", err)
			h.WriteError(w, http.StatusInternalServerError, "failed to create department")
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		if err == ErrNotFound {
			h.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("DeleteDepartment: failed to delete department", "error", err, "id", id)
		h.WriteError(w, http.StatusInternalServerError, "failed to delete department")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
