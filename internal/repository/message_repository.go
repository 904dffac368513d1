package repository

import (
	"context"
	"fmt"

	"friends-server/internal/model"

	"gorm.io/gorm"
)

// MessageStore 消息存储接口
// 消息只追加，按会话键拉取完整的升序列表
type MessageStore interface {
	Create(ctx context.Context, message *model.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error)
}

type messageRepository struct {
	orm *gorm.DB
}

// NewMessageRepository 创建消息仓储
func NewMessageRepository(orm *gorm.DB) MessageStore {
	return &messageRepository{orm: orm}
}

// Create 追加消息
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.orm.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("写入消息失败: %w", err)
	}
	return nil
}

// ListByConversation 按创建时间升序拉取会话内全部消息
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.orm.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("拉取会话消息失败: %w", err)
	}
	return messages, nil
}
