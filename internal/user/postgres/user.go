package postgres

import (
	"time"

	userDatamodel "github.com/adportal/adportal/internal/core/datamodel/user"
	"github.com/adportal/adportal/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.Where("LOWER(username) = LOWER(?)", username).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

// GetCredentials returns the stored bcrypt hash for the bootstrap superuser
// path. Directory-backed accounts have an empty hash.
func (r *UserRepository) GetCredentials(username string) (*user.User, string, error) {
	var u userDatamodel.User
	err := r.db.Where("LOWER(username) = LOWER(?)", username).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", user.ErrNotFound
		}
		return nil, "", err
	}
	return user.FromDataModel(&u), u.PasswordHash, nil
}

func (r *UserRepository) TouchLastLogin(id int64) error {
	now := time.Now()
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("last_login", now).Error
}
