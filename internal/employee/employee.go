package employee

import (
	"errors"
	"time"
)

// Employee is the locally-owned profile joined with the department and job
// names the sync engine mirrors from the directory.
type Employee struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	FullNameEn   string     `json:"full_name_en"`
	FullNameAr   string     `json:"full_name_ar"`
	HireDate     *time.Time `json:"hire_date,omitempty"`
	NID          string     `json:"nid,omitempty"`
	JobTitle     *string    `json:"job_title,omitempty"`
	Department   *string    `json:"department,omitempty"`
	JobID        *int64     `json:"-"`
	DepartmentID *int64     `json:"-"`
}

// DirectoryAttributes are the live fields read from the directory at request
// time. They are omitted when no directory session can be opened.
type DirectoryAttributes struct {
	DN                 string `json:"dn"`
	DisplayName        string `json:"display_name"`
	Mail               string `json:"mail,omitempty"`
	Telephone          string `json:"telephone,omitempty"`
	Title              string `json:"title,omitempty"`
	OrganizationalUnit string `json:"organizational_unit,omitempty"`
}

// Profile is what GET /employees/me returns: the local record plus, when
// reachable, the live directory view.
type Profile struct {
	Employee  *Employee            `json:"employee"`
	Directory *DirectoryAttributes `json:"directory,omitempty"`
}

var ErrNotFound = errors.New("employee not found")
