package model

import (
	"time"
)

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Headline  string    `gorm:"size:120" json:"headline"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"autoCreateTime" json:"lastLogin"`
	LastSeen  time.Time `gorm:"autoCreateTime" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
