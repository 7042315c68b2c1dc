// Package crm serves the read-only user and post endpoints.
package crm

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/pingcrm/common"
	"github.com/joshu-sajeev/pingcrm/internal/models"
)

type Repository interface {
	ListUsers(ctx context.Context, includePosts bool) ([]models.User, error)
	ListPostsByUser(ctx context.Context, userID uint64) ([]models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Hello, World!")
}

// ListUsers handles GET /users?include_posts=bool.
func (h *Handler) ListUsers(c *gin.Context) {
	includePosts := false
	if v := c.Query("include_posts"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.Error(common.Errf(http.StatusBadRequest, "include_posts must be a boolean"))
			return
		}
		includePosts = b
	}

	users, err := h.repo.ListUsers(c.Request.Context(), includePosts)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) ListUserPosts(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.Error(common.Errf(http.StatusBadRequest, "invalid user ID"))
		return
	}

	posts, err := h.repo.ListPostsByUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.repo.ListPosts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
