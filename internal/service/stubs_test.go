package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"friends-server/internal/model"
	"friends-server/internal/repository"
)

// memRelationshipStore 内存版关系存储，按 owner->other 两级map存放记录
// 行为对齐仓储实现：合并写入、缺失即NotFound的状态更新、倒序限量查询
// 可按命名空间注入失败，模拟成对写入只成功一半的场景
type memRelationshipStore struct {
	mu      sync.Mutex
	records map[string]map[string]*model.Relationship

	upsertErr func(ownerUID string) error
	updateErr func(ownerUID string) error
}

func newMemRelationshipStore() *memRelationshipStore {
	return &memRelationshipStore{
		records: make(map[string]map[string]*model.Relationship),
	}
}

func (s *memRelationshipStore) Upsert(_ context.Context, record *model.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.upsertErr != nil {
		if err := s.upsertErr(record.OwnerUID); err != nil {
			return err
		}
	}

	ns, ok := s.records[record.OwnerUID]
	if !ok {
		ns = make(map[string]*model.Relationship)
		s.records[record.OwnerUID] = ns
	}

	if existing, ok := ns[record.OtherUID]; ok {
		// 合并写入：只覆盖给定字段，保留带外字段（updated_at）
		existing.FromUID = record.FromUID
		existing.ToUID = record.ToUID
		existing.Status = record.Status
		existing.CreatedAt = record.CreatedAt
		return nil
	}

	clone := *record
	ns[record.OtherUID] = &clone
	return nil
}

func (s *memRelationshipStore) UpdateStatus(_ context.Context, ownerUID, otherUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		if err := s.updateErr(ownerUID); err != nil {
			return err
		}
	}

	record, ok := s.records[ownerUID][otherUID]
	if !ok {
		return model.ErrRelationshipNotFound
	}
	now := time.Now()
	record.Status = status
	record.UpdatedAt = &now
	return nil
}

func (s *memRelationshipStore) ListIncoming(_ context.Context, uid string) ([]*model.Relationship, error) {
	return s.list(uid, func(r *model.Relationship) bool {
		return r.ToUID == uid && r.Status == model.RelationshipPending
	}, repository.IncomingRequestsLimit), nil
}

func (s *memRelationshipStore) ListSent(_ context.Context, uid string) ([]*model.Relationship, error) {
	return s.list(uid, func(r *model.Relationship) bool {
		return r.FromUID == uid
	}, repository.SentRequestsLimit), nil
}

func (s *memRelationshipStore) ListAccepted(_ context.Context, uid string) ([]*model.Relationship, error) {
	return s.list(uid, func(r *model.Relationship) bool {
		return r.Status == model.RelationshipAccepted
	}, repository.FriendsLimit), nil
}

func (s *memRelationshipStore) list(uid string, match func(*model.Relationship) bool, limit int) []*model.Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*model.Relationship
	for _, r := range s.records[uid] {
		if match(r) {
			clone := *r
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// get 直接读取一份记录（仅测试断言用）
func (s *memRelationshipStore) get(ownerUID, otherUID string) *model.Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[ownerUID][otherUID]
}

// profileStoreStub 按方法注入行为的资料存储桩
type profileStoreStub struct {
	createFn               func(context.Context, *model.Profile) error
	getByUIDFn             func(context.Context, string) (*model.Profile, error)
	getByUsernameOrEmailFn func(context.Context, string) (*model.Profile, error)
	listNewestFn           func(context.Context, int) ([]*model.Profile, error)
}

func (s *profileStoreStub) Create(ctx context.Context, profile *model.Profile) error {
	return s.createFn(ctx, profile)
}

func (s *profileStoreStub) GetByUID(ctx context.Context, uid string) (*model.Profile, error) {
	return s.getByUIDFn(ctx, uid)
}

func (s *profileStoreStub) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.Profile, error) {
	return s.getByUsernameOrEmailFn(ctx, identifier)
}

func (s *profileStoreStub) ListNewest(ctx context.Context, limit int) ([]*model.Profile, error) {
	return s.listNewestFn(ctx, limit)
}

// profilesByUID 构造按UID点查的资料桩，缺失返回 model.ErrProfileNotFound
func profilesByUID(profiles ...*model.Profile) *profileStoreStub {
	byUID := make(map[string]*model.Profile, len(profiles))
	for _, p := range profiles {
		byUID[p.UID] = p
	}
	return &profileStoreStub{
		getByUIDFn: func(_ context.Context, uid string) (*model.Profile, error) {
			if p, ok := byUID[uid]; ok {
				return p, nil
			}
			return nil, model.ErrProfileNotFound
		},
	}
}

// presenceStub 在线状态查询桩
type presenceStub struct {
	online map[string]bool
	err    error
}

func (p *presenceStub) IsOnline(uid string) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	return p.online[uid], nil
}

func allOffline() *presenceStub {
	return &presenceStub{}
}

// memMessageStore 内存版消息存储，按会话键归组，升序返回
type memMessageStore struct {
	mu       sync.Mutex
	messages map[string][]*model.Message

	createErr error
	listCalls int
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{
		messages: make(map[string][]*model.Message),
	}
}

func (s *memMessageStore) Create(_ context.Context, message *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	clone := *message
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], &clone)
	return nil
}

func (s *memMessageStore) ListByConversation(_ context.Context, conversationID string) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	result := make([]*model.Message, len(s.messages[conversationID]))
	copy(result, s.messages[conversationID])
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// memChatEvents 内存版会话事件总线，发布时同步回调全部订阅者
type memChatEvents struct {
	mu          sync.Mutex
	subscribers map[string][]func()
	published   int

	publishErr error
}

func newMemChatEvents() *memChatEvents {
	return &memChatEvents{
		subscribers: make(map[string][]func()),
	}
}

func (b *memChatEvents) Publish(_ context.Context, conversationID string) error {
	b.mu.Lock()
	if b.publishErr != nil {
		b.mu.Unlock()
		return b.publishErr
	}
	fns := append([]func(){}, b.subscribers[conversationID]...)
	b.published++
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (b *memChatEvents) Subscribe(conversationID string, fn func()) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[conversationID] = append(b.subscribers[conversationID], fn)
	return func() {}, nil
}
