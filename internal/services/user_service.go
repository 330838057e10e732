package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Onlinecarrental/final-project-sub000/internal/connect"
	"github.com/Onlinecarrental/final-project-sub000/internal/helpers"
	"github.com/Onlinecarrental/final-project-sub000/internal/models"
)

type UserService struct {
	userRepo models.UserRepo
}

func NewUserService(userRepo models.UserRepo) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

func (us *UserService) CreateUser(user *models.User) (interface{}, error) {
	if err := models.Validate.Struct(user); err != nil {
		return nil, models.Validationf("%v", err)
	}

	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	if !helpers.IsPasswordStrong(user.Password) {
		return nil, models.Validationf("password is not strong enough")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return us.userRepo.CreateUser(context.Background(), user)
}

func (us *UserService) AuthenticateUser(email, password string) (interface{}, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, models.Validationf("invalid email format")
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, models.Validationf("invalid password format")
	}
	response, err := us.userRepo.AuthenticateUser(context.Background(), email, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %v", err)
	}

	return response, nil
}

func (us *UserService) RefreshToken(refreshToken string) (interface{}, error) {
	if refreshToken == "" {
		return nil, models.Validationf("refresh token is required")
	}
	response, err := us.userRepo.RefreshToken(context.Background(), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %v", err)
	}
	return response, nil
}

func (us *UserService) GetUser(id uuid.UUID, accessToken string) (*models.User, error) {
	return us.userRepo.GetUser(context.Background(), id, accessToken)
}

func (us *UserService) UpdateUser(ctx context.Context, fields map[string]interface{}, userid uuid.UUID, accessToken string) (*models.User, error) {
	fields["updated_at"] = time.Now()
	return us.userRepo.UpdateUser(ctx, fields, userid, accessToken)
}

func (us *UserService) UploadAvatar(ctx context.Context, userId uuid.UUID, imageData string, accessToken string) (string, error) {
	if userId == uuid.Nil {
		return "", models.Validationf("invalid user id")
	}

	urls, _, err := helpers.UploadImages(ctx, connect.Cld, []string{imageData}, helpers.AvatarFolder)
	if err != nil || len(urls) == 0 {
		return "", fmt.Errorf("failed to upload avatar: %v", err)
	}

	updated, err := us.userRepo.SetAvatarURL(ctx, userId, urls[0], accessToken)
	if err != nil {
		return "", err
	}

	return updated.AvatarURL, nil
}
