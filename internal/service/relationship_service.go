package service

import (
	"context"
	"errors"
	"time"

	"friends-server/internal/model"
	"friends-server/internal/repository"

	"golang.org/x/sync/errgroup"
)

// PresenceChecker 在线状态查询
// 生产实现走Redis（pkg/redis.PresenceStore）
type PresenceChecker interface {
	IsOnline(uid string) (bool, error)
}

// RelationshipService 好友关系服务
// 每段关系写两份记录（双方命名空间各一份）
// 成对写入并发发出、共同等待，没有跨键事务：一半成功一半失败时
// 两份记录状态不一致，对同一状态的重试会修复漂移
type RelationshipService struct {
	relationshipRepo repository.RelationshipStore
	profileRepo      repository.ProfileStore
	presence         PresenceChecker
}

// NewRelationshipService 创建RelationshipService实例
func NewRelationshipService(relationshipRepo repository.RelationshipStore, profileRepo repository.ProfileStore, presence PresenceChecker) *RelationshipService {
	return &RelationshipService{
		relationshipRepo: relationshipRepo,
		profileRepo:      profileRepo,
		presence:         presence,
	}
}

// Friend 好友列表条目：关系记录加上对方资料的点查结果和在线状态
type Friend struct {
	OtherUID   string     `json:"other_uid"`
	OtherEmail string     `json:"other_email,omitempty"`
	OtherName  string     `json:"other_name,omitempty"`
	Online     bool       `json:"online"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// SendFriendRequest 发送好友请求
// 向双方命名空间各合并写入一份pending记录
// 不检查既有关系：对已accepted/rejected的关系重复调用会把落盘的一侧重置回pending，
// 并刷新创建时间——调用方自行保证不对既有关系重复发送
func (s *RelationshipService) SendFriendRequest(ctx context.Context, fromUID, toUID string) error {
	if fromUID == "" || toUID == "" {
		return errors.New("fromUID and toUID are required")
	}
	if fromUID == toUID {
		return errors.New("cannot send friend request to yourself")
	}

	now := time.Now()

	// 接收方命名空间下以发起方ID为键的一份
	incoming := &model.Relationship{
		OwnerUID:  toUID,
		OtherUID:  fromUID,
		FromUID:   fromUID,
		ToUID:     toUID,
		Status:    model.RelationshipPending,
		CreatedAt: now,
	}
	// 发起方命名空间下以接收方ID为键的一份
	sent := &model.Relationship{
		OwnerUID:  fromUID,
		OtherUID:  toUID,
		FromUID:   fromUID,
		ToUID:     toUID,
		Status:    model.RelationshipPending,
		CreatedAt: now,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.relationshipRepo.Upsert(gctx, incoming) })
	g.Go(func() error { return s.relationshipRepo.Upsert(gctx, sent) })
	return g.Wait()
}

// AcceptFriendRequest 接受好友请求：并发更新双方命名空间的两份记录为accepted
// 任意一份不存在返回 model.ErrRelationshipNotFound
// 一半成功一半失败表现为单个错误，两份记录状态暂时不一致，重试修复
func (s *RelationshipService) AcceptFriendRequest(ctx context.Context, currentUID, otherUID string) error {
	return s.updateBothSides(ctx, currentUID, otherUID, model.RelationshipAccepted)
}

// RejectFriendRequest 拒绝好友请求：并发更新两份记录为rejected
func (s *RelationshipService) RejectFriendRequest(ctx context.Context, currentUID, otherUID string) error {
	return s.updateBothSides(ctx, currentUID, otherUID, model.RelationshipRejected)
}

// updateBothSides 对一段关系的两份记录并发应用同一状态
func (s *RelationshipService) updateBothSides(ctx context.Context, currentUID, otherUID, status string) error {
	if currentUID == "" || otherUID == "" {
		return errors.New("currentUID and otherUID are required")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.relationshipRepo.UpdateStatus(gctx, currentUID, otherUID, status) })
	g.Go(func() error { return s.relationshipRepo.UpdateStatus(gctx, otherUID, currentUID, status) })
	return g.Wait()
}

// GetIncomingRequests 获取收到的待处理好友请求（按创建时间倒序，最多50条）
func (s *RelationshipService) GetIncomingRequests(ctx context.Context, uid string) ([]*model.Relationship, error) {
	return s.relationshipRepo.ListIncoming(ctx, uid)
}

// GetSentRequests 获取发出的好友请求（任意状态，按创建时间倒序，最多50条）
func (s *RelationshipService) GetSentRequests(ctx context.Context, uid string) ([]*model.Relationship, error) {
	return s.relationshipRepo.ListSent(ctx, uid)
}

// GetFriends 获取好友列表（最多100条）
// 对每条accepted记录解析出对方UID并点查其资料和在线状态
// 资料缺失时email/name留空，在线状态查询失败按离线处理，不让整个调用失败
func (s *RelationshipService) GetFriends(ctx context.Context, uid string) ([]*Friend, error) {
	records, err := s.relationshipRepo.ListAccepted(ctx, uid)
	if err != nil {
		return nil, err
	}

	friends := make([]*Friend, 0, len(records))
	for _, record := range records {
		friend := &Friend{
			OtherUID:  record.CounterpartUID(uid),
			Status:    record.Status,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		}

		profile, err := s.profileRepo.GetByUID(ctx, friend.OtherUID)
		if err != nil {
			if !errors.Is(err, model.ErrProfileNotFound) {
				return nil, err
			}
			// 资料缺失，字段留空
		} else {
			friend.OtherEmail = profile.Email
			friend.OtherName = profile.Name
		}

		if online, err := s.presence.IsOnline(friend.OtherUID); err == nil {
			friend.Online = online
		}

		friends = append(friends, friend)
	}

	return friends, nil
}
