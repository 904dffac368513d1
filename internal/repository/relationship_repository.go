package repository

import (
	"context"
	"errors"
	"fmt"

	"friends-server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 列表查询上限
const (
	IncomingRequestsLimit = 50  // 收到的好友请求
	SentRequestsLimit     = 50  // 发出的好友请求
	FriendsLimit          = 100 // 好友列表
)

// RelationshipStore 关系记录存储接口
// 按文档存储的能力集建模：按键合并写入、按键字段更新、过滤+排序+限量查询
type RelationshipStore interface {
	Upsert(ctx context.Context, record *model.Relationship) error
	UpdateStatus(ctx context.Context, ownerUID, otherUID, status string) error
	ListIncoming(ctx context.Context, uid string) ([]*model.Relationship, error)
	ListSent(ctx context.Context, uid string) ([]*model.Relationship, error)
	ListAccepted(ctx context.Context, uid string) ([]*model.Relationship, error)
}

type relationshipRepository struct {
	orm *gorm.DB
}

// NewRelationshipRepository 创建关系记录仓储
func NewRelationshipRepository(orm *gorm.DB) RelationshipStore {
	return &relationshipRepository{orm: orm}
}

// Upsert 合并写入单份记录
// 已存在则只覆盖给定字段（含created_at，重复发送会刷新pending时间戳），不清除带外字段
func (r *relationshipRepository) Upsert(ctx context.Context, record *model.Relationship) error {
	err := r.orm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_uid"}, {Name: "other_uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"from_uid", "to_uid", "status", "created_at"}),
		}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("写入关系记录失败: %w", err)
	}
	return nil
}

// UpdateStatus 更新单份记录的状态和变更时间
// 目标不存在返回 model.ErrRelationshipNotFound
// 对已是目标状态的记录重复应用同样成功（用于修复两份记录间的漂移）
func (r *relationshipRepository) UpdateStatus(ctx context.Context, ownerUID, otherUID, status string) error {
	var existing model.Relationship
	err := r.orm.WithContext(ctx).
		Where("owner_uid = ? AND other_uid = ?", ownerUID, otherUID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrRelationshipNotFound
		}
		return fmt.Errorf("读取关系记录失败: %w", err)
	}

	err = r.orm.WithContext(ctx).
		Model(&model.Relationship{}).
		Where("owner_uid = ? AND other_uid = ?", ownerUID, otherUID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
	if err != nil {
		return fmt.Errorf("更新关系状态失败: %w", err)
	}
	return nil
}

// ListIncoming 查询收到的待处理好友请求（本人命名空间，按创建时间倒序，最多50条）
func (r *relationshipRepository) ListIncoming(ctx context.Context, uid string) ([]*model.Relationship, error) {
	var records []*model.Relationship
	err := r.orm.WithContext(ctx).
		Where("owner_uid = ? AND to_uid = ? AND status = ?", uid, uid, model.RelationshipPending).
		Order("created_at DESC").
		Limit(IncomingRequestsLimit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询收到的好友请求失败: %w", err)
	}
	return records, nil
}

// ListSent 查询发出的好友请求（任意状态，按创建时间倒序，最多50条）
func (r *relationshipRepository) ListSent(ctx context.Context, uid string) ([]*model.Relationship, error) {
	var records []*model.Relationship
	err := r.orm.WithContext(ctx).
		Where("owner_uid = ? AND from_uid = ?", uid, uid).
		Order("created_at DESC").
		Limit(SentRequestsLimit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询发出的好友请求失败: %w", err)
	}
	return records, nil
}

// ListAccepted 查询已接受的关系记录（按创建时间倒序，最多100条）
func (r *relationshipRepository) ListAccepted(ctx context.Context, uid string) ([]*model.Relationship, error) {
	var records []*model.Relationship
	err := r.orm.WithContext(ctx).
		Where("owner_uid = ? AND status = ?", uid, model.RelationshipAccepted).
		Order("created_at DESC").
		Limit(FriendsLimit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询好友列表失败: %w", err)
	}
	return records, nil
}
