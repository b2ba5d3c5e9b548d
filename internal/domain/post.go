package domain

import (
	"context"
	"time"
)

type Post struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ImageURL string `gorm:"size:512;not null" json:"imageUrl"`

	// 归属创建后不变
	UserID  string `gorm:"type:varchar(36);not null;index" json:"-"`
	Creator *User  `gorm:"foreignKey:UserID" json:"creator,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// CreatorID 兼容已 join 和未 join 两种形态
func (p *Post) CreatorID() string {
	if p.Creator != nil && p.Creator.ID != "" {
		return p.Creator.ID
	}
	return p.UserID
}

type PostRepository interface {
	Create(ctx context.Context, p *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	// FindByIDWithCreator 连带 creator 一起取
	FindByIDWithCreator(ctx context.Context, id string) (*Post, error)
	// List 按创建时间倒序分页，同时返回总数
	List(ctx context.Context, offset, limit int) ([]Post, int64, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}
