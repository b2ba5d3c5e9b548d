package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-social-api/internal/service"
	"go-social-api/internal/storage"
	mdw "go-social-api/internal/transport/http/middleware"
	resp "go-social-api/internal/transport/http/response"
)

type FeedHandler struct {
	svc    *service.Service
	images *storage.Images
}

func NewFeedHandler(svc *service.Service, images *storage.Images) *FeedHandler {
	return &FeedHandler{svc: svc, images: images}
}

// ListPosts GET /feed/posts?page=N
func (h *FeedHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	posts, total, err := h.svc.ListPosts(c.Request.Context(), page)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Fetched posts successfully.",
		"posts":      posts,
		"totalItems": total,
	})
}

// CreatePost POST /feed/post（multipart：title/content/image）
func (h *FeedHandler) CreatePost(c *gin.Context) {
	title := c.PostForm("title")
	content := c.PostForm("content")

	// 先校验字段再落文件，避免留孤儿图片
	if err := service.ValidatePostInput(title, content); err != nil {
		resp.Err(c, err)
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		resp.Abort(c, http.StatusUnprocessableEntity, "No image provided.")
		return
	}
	imageURL, err := h.images.Save(fh)
	if err != nil {
		resp.Abort(c, http.StatusUnprocessableEntity, "Invalid image file.")
		return
	}

	p, creator, err := h.svc.CreatePost(c.Request.Context(), c.GetString(mdw.KeyUserID), title, content, imageURL)
	if err != nil {
		h.images.Remove(imageURL)
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully!",
		"post":    p,
		"creator": creator,
	})
}

// GetPost GET /feed/post/:postId
func (h *FeedHandler) GetPost(c *gin.Context) {
	p, err := h.svc.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post fetched.", "post": p})
}

// UpdatePost PUT /feed/post/:postId（multipart：新文件或 image 字段里的旧 URL）
func (h *FeedHandler) UpdatePost(c *gin.Context) {
	title := c.PostForm("title")
	content := c.PostForm("content")

	imageURL := storage.NormalizePath(c.PostForm("image"))
	saved := ""
	if fh, err := c.FormFile("image"); err == nil {
		saved, err = h.images.Save(fh)
		if err != nil {
			resp.Abort(c, http.StatusUnprocessableEntity, "Invalid image file.")
			return
		}
		imageURL = saved
	}
	if imageURL == "" {
		resp.Abort(c, http.StatusUnprocessableEntity, "No file picked.")
		return
	}

	p, err := h.svc.UpdatePost(c.Request.Context(), c.GetString(mdw.KeyUserID), c.Param("postId"), title, content, imageURL)
	if err != nil {
		if saved != "" {
			h.images.Remove(saved)
		}
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated!", "post": p})
}

// DeletePost DELETE /feed/post/:postId
func (h *FeedHandler) DeletePost(c *gin.Context) {
	err := h.svc.DeletePost(c.Request.Context(), c.GetString(mdw.KeyUserID), c.Param("postId"))
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully deleted post."})
}
