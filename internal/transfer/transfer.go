// Package transfer moves a directory person between organizational units and
// mirrors the move into the local employee record, leaving one audit row per
// attempt regardless of outcome.
package transfer

import (
	"time"

	transferDatamodel "github.com/adportal/adportal/internal/core/datamodel/transfer"
	"github.com/adportal/adportal/internal/directory"
)

// Transfer outcome. The directory move is the pivot: a rejected move is
// failed, a completed move with incomplete local propagation is partial.
const (
	StatusFailed  = "failed"
	StatusPartial = "partial"
	StatusSuccess = "success"
)

// Request describes one transfer attempt as submitted by an operator.
// UpdateLocal asks for the employee's department mirror to be updated after
// the move; without it the transfer is directory-only.
type Request struct {
	Login       string `json:"login"`
	NewOU       string `json:"new_ou"`
	UpdateLocal bool   `json:"update_db"`

	ActorID       int64  `json:"-"`
	ActorUsername string `json:"-"`
	IPAddress     string `json:"-"`
}

// Record is the audit entry describing what actually happened.
type Record struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	Login         string    `json:"login"`
	DisplayName   string    `json:"display_name,omitempty"`
	EmployeeID    *int64    `json:"employee_id,omitempty"`
	OldOU         string    `json:"old_ou"`
	NewOU         string    `json:"new_ou"`
	OldDN         string    `json:"old_dn"`
	NewDN         *string   `json:"new_dn,omitempty"`
	OldDepartment *string   `json:"old_department,omitempty"`
	NewDepartment *string   `json:"new_department,omitempty"`
	DBUpdated     bool      `json:"db_updated"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	IPAddress     string    `json:"ip_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists and lists audit records. Records are append-only.
type Store interface {
	Create(rec *Record) error
	List(limit, offset int) ([]*Record, error)
}

// DirectorySession is the slice of a directory session a transfer needs.
type DirectorySession interface {
	SearchByLogin(login string, attributes []string) ([]directory.Entry, error)
	Move(currentDN, newOU string) error
	Close()
}

type Connector interface {
	Connect(login, password string) (DirectorySession, error)
}

func FromDataModel(m *transferDatamodel.OUTransferRecord) *Record {
	return &Record{
		ID:            m.ID,
		ActorUsername: m.ActorUsername,
		Login:         m.Login,
		DisplayName:   m.DisplayName,
		EmployeeID:    m.EmployeeID,
		OldOU:         m.OldOU,
		NewOU:         m.NewOU,
		OldDN:         m.OldDN,
		NewDN:         m.NewDN,
		OldDepartment: m.OldDepartment,
		NewDepartment: m.NewDepartment,
		DBUpdated:     m.DBUpdated,
		Status:        m.Status,
		ErrorMessage:  m.ErrorMessage,
		IPAddress:     m.IPAddress,
		CreatedAt:     m.CreatedAt,
	}
}

func ToDataModel(r *Record) *transferDatamodel.OUTransferRecord {
	return &transferDatamodel.OUTransferRecord{
		ID:            r.ID,
		ActorUsername: r.ActorUsername,
		Login:         r.Login,
		DisplayName:   r.DisplayName,
		EmployeeID:    r.EmployeeID,
		OldOU:         r.OldOU,
		NewOU:         r.NewOU,
		OldDN:         r.OldDN,
		NewDN:         r.NewDN,
		OldDepartment: r.OldDepartment,
		NewDepartment: r.NewDepartment,
		DBUpdated:     r.DBUpdated,
		Status:        r.Status,
		ErrorMessage:  r.ErrorMessage,
		IPAddress:     r.IPAddress,
		CreatedAt:     r.CreatedAt,
	}
}
