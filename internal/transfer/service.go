package transfer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/department"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/employee"
)

var (
	ErrEmptyLogin = errors.New("login must not be empty")
	ErrEmptyOU    = errors.New("target organizational unit must not be empty")
	ErrSameOU     = errors.New("person is already in the target organizational unit")
)

// DepartmentCatalog resolves OU names against the curated department list.
type DepartmentCatalog interface {
	GetByNameFold(name string) (*department.Department, error)
}

// EmployeeMirror is the local side updated after a successful move.
type EmployeeMirror interface {
	GetByUsername(username string) (*employee.Employee, error)
	UpdateDepartment(employeeID int64, departmentID *int64) error
}

type Service struct {
	store       Store
	cache       *credcache.Cache
	connector   Connector
	departments DepartmentCatalog
	employees   EmployeeMirror
	domain      string
	container   string
	logger      *slog.Logger
}

func NewService(
	store Store,
	cache *credcache.Cache,
	connector Connector,
	departments DepartmentCatalog,
	employees EmployeeMirror,
	domain string,
	containerBase string,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:       store,
		cache:       cache,
		connector:   connector,
		departments: departments,
		employees:   employees,
		domain:      domain,
		container:   containerBase,
		logger:      logger,
	}
}

// Execute performs one transfer attempt and always persists exactly one
// audit record once the target person has been located. The directory move
// happens first; local propagation failures downgrade the outcome to partial
// but never undo the move.
func (s *Service) Execute(req Request) (*Record, error) {
	if strings.TrimSpace(req.Login) == "" {
		return nil, ErrEmptyLogin
	}
	if strings.TrimSpace(req.NewOU) == "" {
		return nil, ErrEmptyOU
	}

	creds, ok := s.cache.Get(req.ActorID)
	if !ok {
		return nil, internal.ErrCredentialsExpired
	}

	session, err := s.connector.Connect(creds.Login, creds.Password)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	login := directory.NormalizeLogin(req.Login, s.domain)
	entries, err := session.SearchByLogin(directory.ShortLogin(login), directory.ProfileAttributes)
	if err != nil {
		return nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	if len(entries) == 0 {
		return nil, directory.ErrNotFound
	}
	entry := entries[0]

	if strings.EqualFold(entry.OU(), req.NewOU) {
		return nil, ErrSameOU
	}

	rec := &Record{
		ID:            uuid.New().String(),
		ActorUsername: req.ActorUsername,
		Login:         login,
		DisplayName:   entry.DisplayName,
		OldOU:         entry.OU(),
		NewOU:         req.NewOU,
		OldDN:         entry.DN,
		IPAddress:     req.IPAddress,
		CreatedAt:     time.Now(),
	}

	if err := session.Move(entry.DN, req.NewOU); err != nil {
		rec.Status = StatusFailed
		rec.ErrorMessage = err.Error()
		return s.finish(rec)
	}

	if newDN, err := directory.DNAfterMove(entry.DN, req.NewOU, s.container); err == nil {
		rec.NewDN = &newDN
	} else {
		// the move went through, only the audit trail loses the new DN
		s.logger.Warn("Execute: could not rebuild DN after move", "dn", entry.DN, "error", err)
	}

	if !req.UpdateLocal {
		rec.Status = StatusSuccess
		return s.finish(rec)
	}

	s.propagate(rec, login)
	return s.finish(rec)
}

// propagate mirrors the completed move into the local employee record and
// settles the final status on rec. The profile is resolved before the
// department so a person who was never synced is reported as such.
func (s *Service) propagate(rec *Record, login string) {
	emp, err := s.employees.GetByUsername(login)
	if err != nil {
		if err == employee.ErrNotFound {
			rec.Status = StatusPartial
			rec.ErrorMessage = "employee profile not found, run a directory sync first"
		} else {
			rec.Status = StatusPartial
			rec.ErrorMessage = fmt.Sprintf("employee lookup failed: %v", err)
		}
		return
	}

	rec.EmployeeID = &emp.ID
	rec.OldDepartment = emp.Department

	dept, err := s.departments.GetByNameFold(rec.NewOU)
	if err != nil {
		if err == department.ErrNotFound {
			rec.Status = StatusPartial
			rec.ErrorMessage = fmt.Sprintf("department %q not found, create it first", rec.NewOU)
		} else {
			rec.Status = StatusPartial
			rec.ErrorMessage = fmt.Sprintf("department lookup failed: %v", err)
		}
		return
	}

	if err := s.employees.UpdateDepartment(emp.ID, &dept.ID); err != nil {
		rec.Status = StatusPartial
		rec.ErrorMessage = fmt.Sprintf("local department update failed: %v", err)
		return
	}

	rec.NewDepartment = &dept.Name
	rec.DBUpdated = true
	rec.Status = StatusSuccess
}

// finish persists the audit record. Losing the audit trail is a hard error
// even when the transfer itself went through.
func (s *Service) finish(rec *Record) (*Record, error) {
	if err := s.store.Create(rec); err != nil {
		return nil, internal.NewLocalStoreError("failed to persist transfer record", err)
	}

	s.logger.Info("ou transfer recorded",
		"id", rec.ID,
		"login", rec.Login,
		"old_ou", rec.OldOU,
		"new_ou", rec.NewOU,
		"status", rec.Status,
		"db_updated", rec.DBUpdated)
	return rec, nil
}

func (s *Service) List(limit, offset int) ([]*Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	records, err := s.store.List(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return records, nil
}
