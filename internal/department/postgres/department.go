package postgres

import (
	employeeDatamodel "github.com/adportal/adportal/internal/core/datamodel/employee"
	"github.com/adportal/adportal/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll() ([]*department.Department, error) {
	var models []employeeDatamodel.Department
	if err := r.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	departments := make([]*department.Department, 0, len(models))
	for i := range models {
		departments = append(departments, department.FromDataModel(&models[i]))
	}
	return departments, nil
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var model employeeDatamodel.Department
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&model), nil
}

func (r *DepartmentRepository) GetByNameFold(name string) (*department.Department, error) {
	var model employeeDatamodel.Department
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&model), nil
}

func (r *DepartmentRepository) Create(name string) (*department.Department, error) {
	model := employeeDatamodel.Department{Name: name}
	if err := r.db.Create(&model).Error; err != nil {
		return nil, err
	}
	return department.FromDataModel(&model), nil
}

func (r *DepartmentRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&employeeDatamodel.Department{}).Error
}

func (r *DepartmentRepository) GetOrCreateJob(title string) (*department.Job, error) {
	var model employeeDatamodel.Job
	err := r.db.Where("title = ?", title).First(&model).Error
	if err == gorm.ErrRecordNotFound {
		model = employeeDatamodel.Job{Title: title}
		err = r.db.Create(&model).Error
	}
	if err != nil {
		return nil, err
	}
	return department.JobFromDataModel(&model), nil
}
