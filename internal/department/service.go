package department

import (
	"fmt"
	"log/slog"
)

type Repository interface {
	GetAll() ([]*Department, error)
	GetByID(id int64) (*Department, error)
	GetByNameFold(name string) (*Department, error)
	Create(name string) (*Department, error)
	Delete(id int64) error

	GetOrCreateJob(title string) (*Job, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetAll() ([]*Department, error) {
	departments, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

// GetByNameFold resolves a department by name ignoring case, matching the
// way organizational unit names come back from the directory.
func (s *Service) GetByNameFold(name string) (*Department, error) {
	return s.repo.GetByNameFold(name)
}

func (s *Service) Create(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByNameFold(dto.Name); err == nil && existing != nil {
		return nil, ErrNameTaken
	}

	dept, err := s.repo.Create(dto.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	s.logger.Info("department created", "id", dept.ID, "name", dept.Name)
	return dept, nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	s.logger.Info("department deleted", "id", id)
	return nil
}

// GetOrCreateJob returns the job with the given title, creating it when
// absent. Titles are free text owned by the directory so there is no curated
// catalog to validate against.
func (s *Service) GetOrCreateJob(title string) (*Job, error) {
	job, err := s.repo.GetOrCreateJob(title)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create job: %w", err)
	}
	return job, nil
}
