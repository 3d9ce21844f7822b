package sync

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/directory"
)

type Service struct {
	store     Store
	cache     *credcache.Cache
	connector Connector
	domain    string
	logger    *slog.Logger
}

func NewService(store Store, cache *credcache.Cache, connector Connector, domain string, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		cache:     cache,
		connector: connector,
		domain:    domain,
		logger:    logger,
	}
}

// Run executes a full reconciliation on behalf of the given user, reusing
// the directory credentials cached at login. The run is read-everything
// first, then a single local transaction.
func (s *Service) Run(userID int64) (*Result, error) {
	creds, ok := s.cache.Get(userID)
	if !ok {
		return nil, internal.ErrCredentialsExpired
	}

	session, err := s.connector.Connect(creds.Login, creds.Password)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	entries, err := session.SearchAll(directory.SyncAttributes)
	if err != nil {
		return nil, fmt.Errorf("directory search failed: %w", err)
	}

	result, err := s.reconcile(entries)
	if err != nil {
		return nil, err
	}

	s.logger.Info("directory sync finished",
		"total", result.Total,
		"synced", result.Synced,
		"skipped", result.Skipped,
		"missing_departments", len(result.MissingDepartments))
	return result, nil
}

func (s *Service) reconcile(entries []directory.Entry) (*Result, error) {
	result := &Result{Total: len(entries)}
	missing := make(map[string]struct{})

	err := s.store.InTransaction(func(tx Store) error {
		for _, entry := range entries {
			login := entry.Login()
			if login == "" {
				result.Skipped++
				continue
			}
			username := directory.NormalizeLogin(login, s.domain)

			if err := tx.EnsureUser(username); err != nil {
				return fmt.Errorf("ensure user %s: %w", username, err)
			}

			departmentID, err := s.resolveDepartment(tx, entry.OU(), missing)
			if err != nil {
				return err
			}

			jobID, err := s.resolveJob(tx, entry.Title)
			if err != nil {
				return err
			}

			changed, err := s.upsertEmployee(tx, username, entry.DisplayName, jobID, departmentID)
			if err != nil {
				return err
			}
			if changed {
				result.Synced++
			} else {
				result.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for name := range missing {
		result.MissingDepartments = append(result.MissingDepartments, name)
	}
	sort.Strings(result.MissingDepartments)
	return result, nil
}

// resolveDepartment maps the entry's organizational unit onto the curated
// department catalog. An OU with no matching department leaves the employee
// unassigned and is reported, never auto-created.
func (s *Service) resolveDepartment(tx Store, ou string, missing map[string]struct{}) (*int64, error) {
	if ou == "" {
		return nil, nil
	}
	dept, err := tx.GetDepartmentByNameFold(ou)
	if err != nil {
		if err == ErrDepartmentNotFound {
			missing[ou] = struct{}{}
			return nil, nil
		}
		return nil, fmt.Errorf("lookup department %q: %w", ou, err)
	}
	return &dept.ID, nil
}

func (s *Service) resolveJob(tx Store, title string) (*int64, error) {
	if title == "" {
		return nil, nil
	}
	job, err := tx.GetOrCreateJob(title)
	if err != nil {
		return nil, fmt.Errorf("get or create job %q: %w", title, err)
	}
	return &job.ID, nil
}

// upsertEmployee writes the mirrored fields and reports whether anything
// actually changed, so unchanged entries count as skipped and a second run
// right after a first is a no-op.
func (s *Service) upsertEmployee(tx Store, username, displayName string, jobID, departmentID *int64) (bool, error) {
	existing, err := tx.GetEmployeeByUsername(username)
	if err != nil {
		if err != ErrEmployeeNotFound {
			return false, fmt.Errorf("lookup employee %s: %w", username, err)
		}
		rec := &EmployeeRecord{
			Username:     username,
			FullNameEn:   displayName,
			JobID:        jobID,
			DepartmentID: departmentID,
		}
		if err := tx.CreateEmployee(rec); err != nil {
			return false, fmt.Errorf("create employee %s: %w", username, err)
		}
		return true, nil
	}

	if !needsUpdate(existing, displayName, jobID, departmentID) {
		return false, nil
	}

	existing.FullNameEn = displayName
	existing.JobID = jobID
	existing.DepartmentID = departmentID
	if err := tx.UpdateEmployee(existing); err != nil {
		return false, fmt.Errorf("update employee %s: %w", username, err)
	}
	return true, nil
}

func needsUpdate(existing *EmployeeRecord, displayName string, jobID, departmentID *int64) bool {
	if existing.FullNameEn != displayName {
		return true
	}
	if !int64PtrEqual(existing.JobID, jobID) {
		return true
	}
	return !int64PtrEqual(existing.DepartmentID, departmentID)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
