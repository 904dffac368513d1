package repository

import (
	"context"
	"errors"
	"fmt"

	"friends-server/internal/model"

	"gorm.io/gorm"
)

// ProfileStore 用户资料存储接口
// 注册时写入一次，之后核心业务只做点查和按创建时间倒序的批量拉取
type ProfileStore interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByUID(ctx context.Context, uid string) (*model.Profile, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.Profile, error)
	ListNewest(ctx context.Context, limit int) ([]*model.Profile, error)
}

type profileRepository struct {
	orm *gorm.DB
}

// NewProfileRepository 创建用户资料仓储
func NewProfileRepository(orm *gorm.DB) ProfileStore {
	return &profileRepository{orm: orm}
}

// Create 创建用户资料
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	if err := r.orm.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("创建用户资料失败: %w", err)
	}
	return nil
}

// GetByUID 按UID点查用户资料
func (r *profileRepository) GetByUID(ctx context.Context, uid string) (*model.Profile, error) {
	var p model.Profile
	err := r.orm.WithContext(ctx).Where("uid = ?", uid).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("查询用户资料失败: %w", err)
	}
	return &p, nil
}

// GetByUsernameOrEmail 按用户名或邮箱查询（登录用）
func (r *profileRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.Profile, error) {
	var p model.Profile
	err := r.orm.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("查询用户资料失败: %w", err)
	}
	return &p, nil
}

// ListNewest 按创建时间倒序拉取最新的limit条资料
func (r *profileRepository) ListNewest(ctx context.Context, limit int) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.orm.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("拉取用户资料列表失败: %w", err)
	}
	return profiles, nil
}
