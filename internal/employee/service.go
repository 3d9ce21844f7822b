package employee

import (
	"fmt"
	"log/slog"

	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/directory"
)

type Repository interface {
	GetByUsername(username string) (*Employee, error)
	UpdateDepartment(employeeID int64, departmentID *int64) error
}

// DirectorySession is the slice of a directory session the profile view
// needs.
type DirectorySession interface {
	SearchByLogin(login string, attributes []string) ([]directory.Entry, error)
	Close()
}

// Connector opens a directory session with the caller's own credentials.
type Connector interface {
	Connect(login, password string) (DirectorySession, error)
}

type Service struct {
	repo      Repository
	cache     *credcache.Cache
	connector Connector
	logger    *slog.Logger
}

func NewService(repo Repository, cache *credcache.Cache, connector Connector, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		connector: connector,
		logger:    logger,
	}
}

// GetProfile returns the local employee record merged with the live
// directory attributes. A missing local record is an error; an unreachable
// directory or expired cached credentials only drop the live half.
func (s *Service) GetProfile(userID int64, username string) (*Profile, error) {
	emp, err := s.repo.GetByUsername(username)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	profile := &Profile{Employee: emp}

	creds, ok := s.cache.Get(userID)
	if !ok {
		s.logger.Debug("GetProfile: no cached credentials, skipping directory lookup", "username", username)
		return profile, nil
	}

	session, err := s.connector.Connect(creds.Login, creds.Password)
	if err != nil {
		s.logger.Warn("GetProfile: directory unreachable, serving local record only",
			"username", username, "error", err)
		return profile, nil
	}
	defer session.Close()

	entries, err := session.SearchByLogin(directory.ShortLogin(creds.Login), directory.ProfileAttributes)
	if err != nil || len(entries) == 0 {
		s.logger.Warn("GetProfile: directory lookup failed, serving local record only",
			"username", username, "error", err)
		return profile, nil
	}

	entry := entries[0]
	profile.Directory = &DirectoryAttributes{
		DN:                 entry.DN,
		DisplayName:        entry.DisplayName,
		Mail:               entry.Mail,
		Telephone:          entry.Telephone,
		Title:              entry.Title,
		OrganizationalUnit: entry.OU(),
	}
	return profile, nil
}

func (s *Service) GetByUsername(username string) (*Employee, error) {
	return s.repo.GetByUsername(username)
}

func (s *Service) UpdateDepartment(employeeID int64, departmentID *int64) error {
	return s.repo.UpdateDepartment(employeeID, departmentID)
}
