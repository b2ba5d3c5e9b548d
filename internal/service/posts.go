package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-social-api/internal/apperr"
	"go-social-api/internal/core/cache"
	"go-social-api/internal/domain"
	"go-social-api/internal/realtime"
	"go-social-api/internal/repo"
	"go-social-api/pkg/utils"
)

// CreatorSummary 广播和创建响应里的精简创建者
type CreatorSummary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// createdPostView 外层 Creator 覆盖内嵌 Post 的 creator 字段
type createdPostView struct {
	domain.Post
	Creator CreatorSummary `json:"creator"`
}

type feedPage struct {
	Posts []domain.Post `json:"posts"`
	Total int64         `json:"total"`
}

// ListPosts 创建时间倒序取一页（perPage=2），附带总数。
// 有 redis 时走代际号缓存；缓存故障降级为直查
func (s *Service) ListPosts(ctx context.Context, page int) ([]domain.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * PerPage

	if s.cache != nil {
		key := fmt.Sprintf("feed:v%d:page:%d", s.cache.Version(ctx, "feed:ver"), page)
		fp, err := loadFeedPage(s, ctx, key, offset)
		if err == nil && fp != nil {
			return fp.Posts, fp.Total, nil
		}
		if err != nil {
			// 回源错误里可能混着 redis 故障，区分不了就直查一次
			s.log.Warn("feed cache", zap.Error(err))
		}
	}

	posts, total, err := s.posts.List(ctx, offset, PerPage)
	if err != nil {
		return nil, 0, apperr.Internal("list posts", err)
	}
	return posts, total, nil
}

func loadFeedPage(s *Service, ctx context.Context, key string, offset int) (*feedPage, error) {
	ttl := time.Duration(s.feedTTL) * time.Second
	return cache.GetOrLoadJSON[feedPage](s.cache, ctx, key, ttl, func(ctx context.Context) (*feedPage, error) {
		posts, total, err := s.posts.List(ctx, offset, PerPage)
		if err != nil {
			return nil, err
		}
		return &feedPage{Posts: posts, Total: total}, nil
	})
}

func (s *Service) invalidateFeed(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bump(ctx, "feed:ver")
	}
}

// CreatePost 校验 → 确认归属者存在 → 事务落库 → 广播 create
func (s *Service) CreatePost(ctx context.Context, userID, title, content, imageURL string) (*domain.Post, *CreatorSummary, error) {
	if err := ValidatePostInput(title, content); err != nil {
		return nil, nil, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Internal("db error", err)
	}
	if u == nil {
		return nil, nil, apperr.Unauthorized("Invalid user.")
	}

	p := &domain.Post{
		ID:       utils.NewID(),
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
		UserID:   u.ID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.NewPostRepo(tx).Create(ctx, p)
	})
	if err != nil {
		return nil, nil, apperr.Internal("create post", err)
	}

	creator := &CreatorSummary{ID: u.ID, Name: u.Name}
	s.invalidateFeed(ctx)
	s.hub.BroadcastPosts(realtime.PostEvent{
		Action: "create",
		Post:   createdPostView{Post: *p, Creator: *creator},
	})
	s.log.Info("post created", zap.String("postId", p.ID), zap.String("userId", u.ID))
	return p, creator, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	p, err := s.posts.FindByIDWithCreator(ctx, id)
	if err != nil {
		return nil, apperr.Internal("db error", err)
	}
	if err := foundPost(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePost 守卫顺序：404 → 403 → 422。
// imageURL 为空表示沿用旧图；换图时旧文件在提交后清理
func (s *Service) UpdatePost(ctx context.Context, userID, id, title, content, imageURL string) (*domain.Post, error) {
	p, err := s.posts.FindByIDWithCreator(ctx, id)
	if err != nil {
		return nil, apperr.Internal("db error", err)
	}
	if err := foundPost(p); err != nil {
		return nil, err
	}
	if err := ownedBy(p, userID); err != nil {
		return nil, err
	}
	if err := ValidatePostInput(title, content); err != nil {
		return nil, err
	}

	oldImage := ""
	if imageURL != "" && imageURL != p.ImageURL {
		oldImage = p.ImageURL
		p.ImageURL = imageURL
	}
	p.Title = title
	p.Content = content

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.NewPostRepo(tx).Update(ctx, p)
	})
	if err != nil {
		return nil, apperr.Internal("update post", err)
	}

	if oldImage != "" {
		s.images.Remove(oldImage)
	}
	s.invalidateFeed(ctx)
	s.hub.BroadcastPosts(realtime.PostEvent{Action: "update", Post: p})
	return p, nil
}

// DeletePost 删行 + 清图 + 广播 delete（payload 只有 id）
func (s *Service) DeletePost(ctx context.Context, userID, id string) error {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return apperr.Internal("db error", err)
	}
	if err := foundPost(p); err != nil {
		return err
	}
	if err := ownedBy(p, userID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.NewPostRepo(tx).Delete(ctx, id)
	})
	if err != nil {
		return apperr.Internal("delete post", err)
	}

	s.images.Remove(p.ImageURL)
	s.invalidateFeed(ctx)
	s.hub.BroadcastPosts(realtime.PostEvent{Action: "delete", Post: id})
	s.log.Info("post deleted", zap.String("postId", id), zap.String("userId", userID))
	return nil
}
