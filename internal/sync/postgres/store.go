package postgres

import (
	employeeDatamodel "github.com/adportal/adportal/internal/core/datamodel/employee"
	userDatamodel "github.com/adportal/adportal/internal/core/datamodel/user"
	"github.com/adportal/adportal/internal/sync"
	"gorm.io/gorm"
)

// SyncStore implements sync.Store over gorm. InTransaction hands the
// callback a store bound to the transaction connection.
type SyncStore struct {
	db *gorm.DB
}

func NewSyncStore(db *gorm.DB) *SyncStore {
	return &SyncStore{db: db}
}

func (s *SyncStore) InTransaction(fn func(tx sync.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&SyncStore{db: tx})
	})
}

// EnsureUser creates the local identity for a directory principal when it
// does not exist yet. Existing rows keep their flags untouched.
func (s *SyncStore) EnsureUser(username string) error {
	var u userDatamodel.User
	err := s.db.Where("LOWER(username) = LOWER(?)", username).First(&u).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return s.db.Create(&userDatamodel.User{
		Username: username,
		IsActive: true,
	}).Error
}

func (s *SyncStore) GetDepartmentByNameFold(name string) (*sync.Department, error) {
	var d employeeDatamodel.Department
	err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, sync.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &sync.Department{ID: d.ID, Name: d.Name}, nil
}

func (s *SyncStore) GetOrCreateJob(title string) (*sync.Job, error) {
	var j employeeDatamodel.Job
	err := s.db.Where("title = ?", title).First(&j).Error
	if err == gorm.ErrRecordNotFound {
		j = employeeDatamodel.Job{Title: title}
		err = s.db.Create(&j).Error
	}
	if err != nil {
		return nil, err
	}
	return &sync.Job{ID: j.ID, Title: j.Title}, nil
}

func (s *SyncStore) GetEmployeeByUsername(username string) (*sync.EmployeeRecord, error) {
	var e employeeDatamodel.Employee
	err := s.db.Where("LOWER(username) = LOWER(?)", username).First(&e).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, sync.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &sync.EmployeeRecord{
		ID:           e.ID,
		Username:     e.Username,
		FullNameEn:   e.FullNameEn,
		JobID:        e.JobID,
		DepartmentID: e.DepartmentID,
		HireDate:     e.HireDate,
	}, nil
}

func (s *SyncStore) CreateEmployee(rec *sync.EmployeeRecord) error {
	model := employeeDatamodel.Employee{
		Username:     rec.Username,
		FullNameEn:   rec.FullNameEn,
		JobID:        rec.JobID,
		DepartmentID: rec.DepartmentID,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return err
	}
	rec.ID = model.ID
	return nil
}

func (s *SyncStore) UpdateEmployee(rec *sync.EmployeeRecord) error {
	return s.db.Model(&employeeDatamodel.Employee{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"full_name_en":  rec.FullNameEn,
			"job_id":        rec.JobID,
			"department_id": rec.DepartmentID,
		}).Error
}
