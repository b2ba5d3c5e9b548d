package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-social-api/internal/service"
	mdw "go-social-api/internal/transport/http/middleware"
	resp "go-social-api/internal/transport/http/response"
)

type AuthHandler struct {
	svc *service.Service
}

func NewAuthHandler(svc *service.Service) *AuthHandler { return &AuthHandler{svc: svc} }

type signupIn struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Signup POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var in signupIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}
	u, err := h.svc.Signup(c.Request.Context(), in.Email, in.Name, in.Password)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created!", "userId": u.ID})
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": u.ID})
}

// GetStatus GET /status（登录态）
func (h *AuthHandler) GetStatus(c *gin.Context) {
	status, err := h.svc.GetStatus(c.Request.Context(), c.GetString(mdw.KeyUserID))
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

type statusIn struct {
	Status string `json:"status"`
}

// UpdateStatus PATCH /status（登录态）
func (h *AuthHandler) UpdateStatus(c *gin.Context) {
	var in statusIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Abort(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}
	if _, err := h.svc.UpdateStatus(c.Request.Context(), c.GetString(mdw.KeyUserID), in.Status); err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated."})
}
