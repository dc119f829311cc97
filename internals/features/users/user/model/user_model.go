package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSecretary Role = "secretary"
	RoleTeacher   Role = "teacher"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecretary, RoleTeacher:
		return true
	}
	return false
}

// User is a staff account of one center.
type User struct {
	UserID       uuid.UUID `json:"user_id" gorm:"column:user_id;type:uuid;primaryKey"`
	UserName     string    `json:"user_name" gorm:"column:user_name;type:varchar(50);not null;uniqueIndex"`
	UserPassword string    `json:"-" gorm:"column:user_password;type:text;not null"`
	UserRole     Role      `json:"user_role" gorm:"column:user_role;type:varchar(20);not null;default:'secretary'"`
	UserCenterID uuid.UUID `json:"user_center_id" gorm:"column:user_center_id;type:uuid;not null;index"`
	UserPhone    *string   `json:"user_phone,omitempty" gorm:"column:user_phone;type:varchar(20)"`
	UserIsActive bool      `json:"user_is_active" gorm:"column:user_is_active;type:boolean;not null;default:true"`

	UserCreatedAt time.Time      `json:"user_created_at" gorm:"column:user_created_at;type:timestamptz;not null;autoCreateTime"`
	UserUpdatedAt time.Time      `json:"user_updated_at" gorm:"column:user_updated_at;type:timestamptz;not null;autoUpdateTime"`
	UserDeletedAt gorm.DeletedAt `json:"user_deleted_at,omitempty" gorm:"column:user_deleted_at;type:timestamptz;index"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	u.UserName = NormalizeUsername(u.UserName)
	return nil
}

// NormalizeUsername is applied on write and on every lookup.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
