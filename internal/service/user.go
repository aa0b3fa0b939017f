package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

// UserService handles profile reads and avatar management.
type UserService struct {
	db     *gorm.DB
	images *ImageService
}

func NewUserService(db *gorm.DB, images *ImageService) *UserService {
	return &UserService{db: db, images: images}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("User not found.")
		}
		return nil, NewInternalError(err.Error())
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, page, limit int) (int64, []models.User, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, NewInternalError(err.Error())
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("username").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return 0, nil, NewInternalError(err.Error())
	}
	return total, users, nil
}

// SetAvatar decodes and stores an inline base64 avatar, persisting its URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, payload string) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.images.SaveBase64(ctx, payload, "avatars")
	if err != nil {
		return "", err
	}

	user.AvatarURL = url
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return "", NewInternalError(err.Error())
	}
	return url, nil
}

func (s *UserService) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.AvatarURL = ""
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return NewInternalError(err.Error())
	}
	return nil
}
