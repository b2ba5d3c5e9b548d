package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-social-api/internal/core/auth"
	"go-social-api/internal/realtime"
	"go-social-api/internal/service"
	"go-social-api/internal/storage"
	gql "go-social-api/internal/transport/graphql"
	"go-social-api/internal/transport/http/handler"
	mdw "go-social-api/internal/transport/http/middleware"
)

type Opts struct {
	Log    *zap.Logger
	Svc    *service.Service
	Images *storage.Images
	JWTer  *auth.JWTer
	Hub    *realtime.Hub
	Schema graphql.Schema
}

func New(o Opts) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(o.Log, true),
		mdw.Metrics(),
		mdw.AccessLog(o.Log),
		cors.Default(),
		// 软鉴权：没带 token 也放行，需要登录的路由再拦
		mdw.OptionalAuth(o.JWTer),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", o.Images.Dir)
	r.GET("/ws", realtime.ServeWS(o.Hub, o.Log))
	r.POST("/graphql", gql.Handler(o.Schema, o.Log))

	authH := handler.NewAuthHandler(o.Svc)
	feedH := handler.NewFeedHandler(o.Svc, o.Images)

	r.POST("/signup", authH.Signup)
	r.POST("/login", authH.Login)
	r.GET("/feed/posts", feedH.ListPosts)
	r.GET("/feed/post/:postId", feedH.GetPost)

	logged := r.Group("", mdw.RequireAuth())
	logged.GET("/status", authH.GetStatus)
	logged.PATCH("/status", authH.UpdateStatus)
	logged.POST("/feed/post", feedH.CreatePost)
	logged.PUT("/feed/post/:postId", feedH.UpdatePost)
	logged.DELETE("/feed/post/:postId", feedH.DeletePost)

	return r
}
