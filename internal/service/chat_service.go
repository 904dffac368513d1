package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"friends-server/internal/model"
	"friends-server/internal/repository"
	"friends-server/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatEvents 会话变更事件总线
// 消息写入后按会话键发布事件，订阅方收到后重新拉取会话快照
// 生产实现走Redis pub/sub（pkg/redis.ChatEventBus）
type ChatEvents interface {
	Publish(ctx context.Context, conversationID string) error
	Subscribe(conversationID string, fn func()) (func(), error)
}

// ChatService 一对一聊天服务
// 会话键由双方UID排序拼接得出，双方读写同一个有序集合
type ChatService struct {
	messageRepo repository.MessageStore
	events      ChatEvents
}

// NewChatService 创建ChatService实例
func NewChatService(messageRepo repository.MessageStore, events ChatEvents) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		events:      events,
	}
}

// ConversationKey 计算会话键，满足 ConversationKey(a,b) == ConversationKey(b,a)
func (s *ChatService) ConversationKey(userA, userB string) string {
	return model.ConversationKey(userA, userB)
}

// SendMessage 追加一条消息
// 空白消息按无操作处理：不写存储、不报错、返回nil
// 写入成功后发布会话变更事件；事件发布失败只记告警，不影响消息写入结果
func (s *ChatService) SendMessage(ctx context.Context, conversationID, fromUID, toUID, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	message := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		FromUID:        fromUID,
		ToUID:          toUID,
		Text:           text,
		CreatedAt:      time.Now(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, conversationID); err != nil {
		logger.Warn("发布会话事件失败",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}

	return message, nil
}

// GetMessages 一次性拉取会话快照（按创建时间升序）
func (s *ChatService) GetMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	return s.messageRepo.ListByConversation(ctx, conversationID)
}

// SubscribeMessages 建立会话的实时订阅
// 返回前同步投递一次完整的升序消息列表，之后每次插入事件都重新投递完整列表
// 返回的取消函数执行后不再有任何回调
func (s *ChatService) SubscribeMessages(conversationID string, onUpdate func([]*model.Message)) (func(), error) {
	var mu sync.Mutex
	cancelled := false

	deliver := func() {
		messages, err := s.messageRepo.ListByConversation(context.Background(), conversationID)
		if err != nil {
			// 本次快照拉取失败，等下一个事件再试
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if !cancelled {
			onUpdate(messages)
		}
	}

	cancelEvents, err := s.events.Subscribe(conversationID, deliver)
	if err != nil {
		return nil, err
	}

	// 初始快照
	deliver()

	cancel := func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		cancelEvents()
	}
	return cancel, nil
}
