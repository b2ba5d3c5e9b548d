package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string `gorm:"size:64;not null" json:"name"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Status       string `gorm:"size:255;not null;default:'I am new!'" json:"status"`

	// 拥有的帖子即 user_id 指向自己的行，按创建时间排序
	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}
