package postgres

import (
	"time"

	"github.com/adportal/adportal/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

type employeeRow struct {
	ID           int64
	Username     string
	FullNameEn   string
	FullNameAr   string
	HireDate     *time.Time
	NID          string
	JobID        *int64
	DepartmentID *int64
	JobTitle     *string
	Department   *string
}

func (r *EmployeeRepository) GetByUsername(username string) (*employee.Employee, error) {
	var row employeeRow
	err := r.db.Table("employees e").
		Select(`e.id, e.username, e.full_name_en, e.full_name_ar, e.hire_date, e.nid,
			e.job_id, e.department_id, j.title AS job_title, d.name AS department`).
		Joins("LEFT JOIN jobs j ON j.id = e.job_id").
		Joins("LEFT JOIN departments d ON d.id = e.department_id").
		Where("LOWER(e.username) = LOWER(?)", username).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, employee.ErrNotFound
		}
		return nil, err
	}

	return &employee.Employee{
		ID:           row.ID,
		Username:     row.Username,
		FullNameEn:   row.FullNameEn,
		FullNameAr:   row.FullNameAr,
		HireDate:     row.HireDate,
		NID:          row.NID,
		JobTitle:     row.JobTitle,
		Department:   row.Department,
		JobID:        row.JobID,
		DepartmentID: row.DepartmentID,
	}, nil
}

func (r *EmployeeRepository) UpdateDepartment(employeeID int64, departmentID *int64) error {
	return r.db.Table("employees").
		Where("id = ?", employeeID).
		Updates(map[string]interface{}{
			"department_id": departmentID,
			"updated_at":    time.Now(),
		}).Error
}
