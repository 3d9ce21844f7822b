// Package sync pulls person entries out of the directory and reconciles the
// local mirror (users, employees, jobs) against them inside one transaction.
package sync

import (
	"errors"
	"time"

	"github.com/adportal/adportal/internal/directory"
)

var (
	ErrDepartmentNotFound = errors.New("no department matches the organizational unit")
	ErrEmployeeNotFound   = errors.New("employee record not found")
)

// Result summarizes one reconciliation run. Skipped counts both entries
// without a usable login and employees that needed no change.
type Result struct {
	Total              int      `json:"total"`
	Synced             int      `json:"synced"`
	Skipped            int      `json:"skipped"`
	MissingDepartments []string `json:"missing_departments,omitempty"`
}

// EmployeeRecord is the slice of the employees table the reconciler works
// with.
type EmployeeRecord struct {
	ID           int64
	Username     string
	FullNameEn   string
	JobID        *int64
	DepartmentID *int64
	HireDate     *time.Time
}

// Department and Job are catalog lookups resolved during reconciliation.
type Department struct {
	ID   int64
	Name string
}

type Job struct {
	ID    int64
	Title string
}

// Store is the transactional persistence boundary for a sync run. All writes
// of one run happen through the Store handed to the InTransaction callback,
// so a failure rolls back the entire run.
type Store interface {
	InTransaction(fn func(tx Store) error) error

	EnsureUser(username string) error
	GetDepartmentByNameFold(name string) (*Department, error)
	GetOrCreateJob(title string) (*Job, error)
	GetEmployeeByUsername(username string) (*EmployeeRecord, error)
	CreateEmployee(rec *EmployeeRecord) error
	UpdateEmployee(rec *EmployeeRecord) error
}

// DirectorySession is the read side of a sync run.
type DirectorySession interface {
	SearchAll(attributes []string) ([]directory.Entry, error)
	Close()
}

// Connector opens a directory session with the requesting user's own cached
// credentials; the service never holds credentials of its own.
type Connector interface {
	Connect(login, password string) (DirectorySession, error)
}
