package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"friends-server/internal/model"
	"friends-server/internal/repository"
	"friends-server/pkg/jwt"
	"friends-server/pkg/password"

	"github.com/google/uuid"
)

// UserService 账号服务：注册与登录
// 资料记录在注册时创建一次，之后核心业务只读
type UserService struct {
	profileRepo repository.ProfileStore
	jwtService  *jwt.JWTService
}

// NewUserService 创建UserService实例
func NewUserService(profileRepo repository.ProfileStore, jwtService *jwt.JWTService) *UserService {
	return &UserService{profileRepo: profileRepo, jwtService: jwtService}
}

// Register 注册：创建资料记录并签发token
func (s *UserService) Register(ctx context.Context, username, email, name, plainPassword string) (*model.Profile, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if username == "" || email == "" || plainPassword == "" {
		return nil, "", errors.New("username, email and password are required")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}

	profile := &model.Profile{
		UID:          uuid.NewString(),
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(
		profile.UID,
		map[string]interface{}{"username": profile.Username},
	)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

// Login 登录：校验密码并签发token
func (s *UserService) Login(ctx context.Context, identifier, plainPassword string) (*model.Profile, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", errors.New("identifier and password are required")
	}

	profile, err := s.profileRepo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, "", err
	}
	if !password.Verify(plainPassword, profile.PasswordHash) {
		return nil, "", errors.New("invalid credentials")
	}

	token, err := s.jwtService.GenerateToken(
		profile.UID,
		map[string]interface{}{"username": profile.Username},
	)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(ctx context.Context, uid string) (*model.Profile, error) {
	return s.profileRepo.GetByUID(ctx, uid)
}
