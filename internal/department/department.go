package department

import (
	"errors"

	employeeDatamodel "github.com/adportal/adportal/internal/core/datamodel/employee"
)

// Department mirrors a directory organizational unit. The catalog is curated
// by operators; the sync engine only reads it.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Job struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

var (
	ErrNotFound    = errors.New("department not found")
	ErrNameTaken   = errors.New("department name already exists")
	ErrEmptyName   = errors.New("department name must not be empty")
	ErrJobNotFound = errors.New("job not found")
)

func FromDataModel(d *employeeDatamodel.Department) *Department {
	return &Department{ID: d.ID, Name: d.Name}
}

func JobFromDataModel(j *employeeDatamodel.Job) *Job {
	return &Job{ID: j.ID, Title: j.Title}
}
