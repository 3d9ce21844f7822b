package user

import "time"

// User mirrors a directory principal locally. PasswordHash is set only for
// the bootstrap superuser; directory-backed accounts never store a password.
type User struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;default:''"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	IsStaff      bool       `gorm:"column:is_staff;default:false"`
	IsSuperuser  bool       `gorm:"column:is_superuser;default:false"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	DateJoined   time.Time  `gorm:"column:date_joined;default:now()"`
}

func (User) TableName() string {
	return "users"
}
