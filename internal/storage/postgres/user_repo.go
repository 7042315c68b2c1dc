package postgres

import (
	"context"
	"fmt"

	"github.com/joshu-sajeev/pingcrm/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListUsers returns every user ordered by id, with their posts when
// includePosts is set.
func (r *UserRepository) ListUsers(ctx context.Context, includePosts bool) ([]models.User, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if includePosts {
		q = q.Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("posts.id ASC")
		})
	}

	users := []models.User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) ListPostsByUser(ctx context.Context, userID uint64) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts of user %d: %w", userID, err)
	}
	return posts, nil
}

func (r *UserRepository) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}
