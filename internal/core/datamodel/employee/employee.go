package employee

import "time"

type Job struct {
	ID        int64     `gorm:"primaryKey"`
	Title     string    `gorm:"column:title;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Job) TableName() string {
	return "jobs"
}

// Department names correspond to directory OU names; matching is
// case-insensitive. The catalog is curated by hand, never auto-created.
type Department struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Department) TableName() string {
	return "departments"
}

// Employee carries locally-owned profile fields plus the department and job
// mirror refreshed from the directory by the sync engine. Nullable FKs mark
// reconciliation gaps (e.g. an OU with no matching department).
type Employee struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"column:username;uniqueIndex;not null"`
	FullNameEn   string     `gorm:"column:full_name_en"`
	FullNameAr   string     `gorm:"column:full_name_ar"`
	HireDate     *time.Time `gorm:"column:hire_date"`
	NID          string     `gorm:"column:nid"`
	JobID        *int64     `gorm:"column:job_id;index"`
	DepartmentID *int64     `gorm:"column:department_id;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Employee) TableName() string {
	return "employees"
}
