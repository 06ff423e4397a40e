package model

import (
	"time"
)

type UserRole string

const (
	Teacher UserRole = "teacher"
	Parent  UserRole = "parent"
)

// swagger:model User
type User struct {
	BaseModel
	Email     string     `gorm:"size:100;unique;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:20;not null;default:'parent'" json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}
