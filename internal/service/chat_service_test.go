package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"friends-server/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationKeyOrderIndependent(t *testing.T) {
	svc := NewChatService(newMemMessageStore(), newMemChatEvents())

	assert.Equal(t, svc.ConversationKey("alice", "bob"), svc.ConversationKey("bob", "alice"))
	assert.Equal(t, "alice_bob", svc.ConversationKey("bob", "alice"))
}

func TestSendMessageStoresAndPublishes(t *testing.T) {
	store := newMemMessageStore()
	events := newMemChatEvents()
	svc := NewChatService(store, events)
	ctx := context.Background()

	cid := svc.ConversationKey("alice", "bob")
	msg, err := svc.SendMessage(ctx, cid, "alice", "bob", "hello")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, cid, msg.ConversationID)
	assert.Equal(t, "alice", msg.FromUID)
	assert.Equal(t, "bob", msg.ToUID)
	assert.Equal(t, "hello", msg.Text)
	assert.WithinDuration(t, time.Now(), msg.CreatedAt, time.Second)

	stored, err := store.ListByConversation(ctx, cid)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, msg.ID, stored[0].ID)

	assert.Equal(t, 1, events.published)
}

// 空白消息静默丢弃：不落库、不发事件
func TestSendMessageBlankTextIsNoop(t *testing.T) {
	store := newMemMessageStore()
	events := newMemChatEvents()
	svc := NewChatService(store, events)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\n\t"} {
		msg, err := svc.SendMessage(ctx, "alice_bob", "alice", "bob", text)
		require.NoError(t, err)
		assert.Nil(t, msg)
	}

	stored, err := store.ListByConversation(ctx, "alice_bob")
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Zero(t, events.published)
}

// 事件发布失败不影响消息写入：消息照常返回并落库
func TestSendMessagePublishFailureStillStores(t *testing.T) {
	store := newMemMessageStore()
	events := newMemChatEvents()
	events.publishErr = errors.New("event bus unreachable")
	svc := NewChatService(store, events)
	ctx := context.Background()

	msg, err := svc.SendMessage(ctx, "alice_bob", "alice", "bob", "hello")
	require.NoError(t, err)
	require.NotNil(t, msg)

	stored, err := store.ListByConversation(ctx, "alice_bob")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, msg.ID, stored[0].ID)
}

func TestSendMessageStoreError(t *testing.T) {
	store := newMemMessageStore()
	ioErr := errors.New("store unreachable")
	store.createErr = ioErr
	events := newMemChatEvents()
	svc := NewChatService(store, events)

	_, err := svc.SendMessage(context.Background(), "alice_bob", "alice", "bob", "hello")
	assert.ErrorIs(t, err, ioErr)
	assert.Zero(t, events.published)
}

func TestSubscribeMessagesInitialSnapshot(t *testing.T) {
	store := newMemMessageStore()
	events := newMemChatEvents()
	svc := NewChatService(store, events)
	ctx := context.Background()

	cid := svc.ConversationKey("alice", "bob")
	_, err := svc.SendMessage(ctx, cid, "alice", "bob", "first")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, cid, "bob", "alice", "second")
	require.NoError(t, err)

	var snapshots [][]*model.Message
	cancel, err := svc.SubscribeMessages(cid, func(messages []*model.Message) {
		snapshots = append(snapshots, messages)
	})
	require.NoError(t, err)
	defer cancel()

	// 订阅时立即推送一次全量快照
	require.Len(t, snapshots, 1)
	require.Len(t, snapshots[0], 2)
	assert.Equal(t, "first", snapshots[0][0].Text)
	assert.Equal(t, "second", snapshots[0][1].Text)
}

func TestSubscribeMessagesSnapshotPerInsert(t *testing.T) {
	store := newMemMessageStore()
	events := newMemChatEvents()
	svc := NewChatService(store, events)
	ctx := context.Background()

	cid := svc.ConversationKey("alice", "bob")
	var snapshots [][]*model.Message
	cancel, err := svc.SubscribeMessages(cid, func(messages []*model.Message) {
		snapshots = append(snapshots, messages)
	})
	require.NoError(t, err)
	defer cancel()

	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])

	// 双方各自计算会话键后发送，落到同一个会话
	_, err = svc.SendMessage(ctx, svc.ConversationKey("alice", "bob"), "alice", "bob", "hi bob")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, svc.ConversationKey("bob", "alice"), "bob", "alice", "hi alice")
	require.NoError(t, err)

	// 每次写入触发一次全量快照，顺序始终时间升序
	require.Len(t, snapshots, 3)
	require.Len(t, snapshots[1], 1)
	require.Len(t, snapshots[2], 2)
	assert.Equal(t, "hi bob", snapshots[2][0].Text)
	assert.Equal(t, "hi alice", snapshots[2][1].Text)
}

func TestSubscribeMessagesCancelStopsCallbacks(t *testing.T) {
	store := newMemMessageStore()
	events := newMemChatEvents()
	svc := NewChatService(store, events)
	ctx := context.Background()

	cid := svc.ConversationKey("alice", "bob")
	calls := 0
	cancel, err := svc.SubscribeMessages(cid, func([]*model.Message) {
		calls++
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	cancel()

	_, err = svc.SendMessage(ctx, cid, "alice", "bob", "after cancel")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// cancel幂等
	cancel()
	assert.Equal(t, 1, calls)
}

func TestSubscribeMessagesIsolatedPerConversation(t *testing.T) {
	store := newMemMessageStore()
	events := newMemChatEvents()
	svc := NewChatService(store, events)
	ctx := context.Background()

	calls := 0
	cancel, err := svc.SubscribeMessages(svc.ConversationKey("alice", "bob"), func([]*model.Message) {
		calls++
	})
	require.NoError(t, err)
	defer cancel()
	require.Equal(t, 1, calls)

	// 其他会话的写入不触发回调
	_, err = svc.SendMessage(ctx, svc.ConversationKey("alice", "carol"), "alice", "carol", "hey")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
