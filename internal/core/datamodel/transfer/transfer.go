package transfer

import "time"

// OUTransferRecord is the immutable audit entry written once per transfer
// attempt. Rows are inserted and read, never updated or deleted.
type OUTransferRecord struct {
	ID            string    `gorm:"column:id;primaryKey"`
	ActorUsername string    `gorm:"column:actor_username;not null;index"`
	Login         string    `gorm:"column:login;not null;index"`
	DisplayName   string    `gorm:"column:display_name"`
	EmployeeID    *int64    `gorm:"column:employee_id"`
	OldOU         string    `gorm:"column:old_ou"`
	NewOU         string    `gorm:"column:new_ou"`
	OldDN         string    `gorm:"column:old_dn"`
	NewDN         *string   `gorm:"column:new_dn"`
	OldDepartment *string   `gorm:"column:old_department"`
	NewDepartment *string   `gorm:"column:new_department"`
	DBUpdated     bool      `gorm:"column:db_updated;default:false"`
	Status        string    `gorm:"column:status;not null;index"`
	ErrorMessage  string    `gorm:"column:error_message"`
	IPAddress     string    `gorm:"column:ip_address"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
}

func (OUTransferRecord) TableName() string {
	return "ou_transfers"
}
