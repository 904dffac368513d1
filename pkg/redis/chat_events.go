package redis

import (
	"context"
	"fmt"
)

// 会话事件相关常量
const (
	// ChatEventChannelPrefix 会话变更事件channel前缀，每个会话一个channel
	ChatEventChannelPrefix = "friends:chat:events:"
)

// ChatEventBus 基于Redis pub/sub的会话变更事件总线
// 消息写入后发布一条事件，订阅方收到后重新拉取会话快照
// 多实例部署时事件经Redis转发到所有实例
type ChatEventBus struct{}

// NewChatEventBus 创建会话事件总线
func NewChatEventBus() *ChatEventBus {
	return &ChatEventBus{}
}

// Publish 发布会话变更事件
func (b *ChatEventBus) Publish(ctx context.Context, conversationID string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	if err := client.Publish(ctx, ChatEventChannelPrefix+conversationID, "insert").Err(); err != nil {
		return fmt.Errorf("发布会话事件失败: %w", err)
	}
	return nil
}

// Subscribe 订阅会话变更事件，返回取消函数
// 取消后不再投递事件
func (b *ChatEventBus) Subscribe(conversationID string, fn func()) (func(), error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}

	sub := client.Subscribe(ctx, ChatEventChannelPrefix+conversationID)

	// 确认订阅建立，避免漏掉紧随其后的事件
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("订阅会话事件失败: %w", err)
	}

	go func() {
		for range sub.Channel() {
			fn()
		}
	}()

	cancel := func() {
		_ = sub.Close()
	}
	return cancel, nil
}
