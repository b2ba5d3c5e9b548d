package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-social-api/internal/core/auth"
	"go-social-api/internal/core/cache"
	"go-social-api/internal/domain"
	"go-social-api/internal/realtime"
	"go-social-api/internal/storage"
)

// PerPage 两端（REST / GraphQL）共用的固定页大小
const PerPage = 2

// Broadcaster 帖子变更的下游通知，realtime.Hub 实现
type Broadcaster interface {
	BroadcastPosts(ev realtime.PostEvent)
}

// Service 唯一的业务层：REST handler 和 GraphQL resolver 都只调这里，
// 避免两套 transport 各写一份规则然后漂移
type Service struct {
	db       *gorm.DB
	users    domain.UserRepository
	posts    domain.PostRepository
	jwter    *auth.JWTer
	images   *storage.Images
	hub      Broadcaster
	cache    *cache.Cache // 可为 nil：feed 缓存是可选的
	feedTTL  int          // 秒
	validate *validator.Validate
	log      *zap.Logger
}

type Opts struct {
	DB      *gorm.DB
	Users   domain.UserRepository
	Posts   domain.PostRepository
	JWTer   *auth.JWTer
	Images  *storage.Images
	Hub     Broadcaster
	Cache   *cache.Cache
	FeedTTL int
	Log     *zap.Logger
}

func New(o Opts) *Service {
	if o.FeedTTL <= 0 {
		o.FeedTTL = 30
	}
	return &Service{
		db:       o.DB,
		users:    o.Users,
		posts:    o.Posts,
		jwter:    o.JWTer,
		images:   o.Images,
		hub:      o.Hub,
		cache:    o.Cache,
		feedTTL:  o.FeedTTL,
		validate: validator.New(),
		log:      o.Log,
	}
}
