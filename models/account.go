package models

import (
	"time"
)

const AccountTable = "cl_accounts"

// AdminHandle 保留账号，始终为管理员
const AdminHandle = "admin"

// Account 教师/管理员账号；PasswordHash 只存 bcrypt 哈希
type Account struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Handle       string `gorm:"uniqueIndex;size:255;not null" json:"handle"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	DisplayName  string `gorm:"size:255;not null" json:"displayName"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"isAdmin"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Account) TableName() string {
	return AccountTable
}
