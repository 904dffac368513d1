package redis

import (
	"encoding/json"
	"fmt"
	"time"
)

// PresenceData 在线状态数据
type PresenceData struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Status    string    `json:"status"` // online/offline
	LastSeen  time.Time `json:"last_seen"`
	Connected bool      `json:"connected"` // 是否有活跃连接
}

// 在线状态相关常量
const (
	PresenceKeyPrefix = "friends:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "friends:online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute          // 在线状态TTL（2倍心跳周期）
)

// SetUserPresence 设置用户在线状态
func SetUserPresence(uid, username, status string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := PresenceKeyPrefix + uid

	presence := PresenceData{
		UID:       uid,
		Username:  username,
		Status:    status,
		LastSeen:  time.Now(),
		Connected: status == "online",
	}

	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	// 设置用户状态，带TTL
	if err := Set(key, data, PresenceTTL); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}

	// 更新在线用户集合
	if status == "online" {
		err = client.SAdd(ctx, OnlineUsersKey, uid).Err()
	} else {
		err = client.SRem(ctx, OnlineUsersKey, uid).Err()
	}
	if err != nil {
		return fmt.Errorf("更新在线用户集合失败: %w", err)
	}

	return nil
}

// GetUserPresence 获取用户在线状态
func GetUserPresence(uid string) (*PresenceData, error) {
	key := PresenceKeyPrefix + uid

	data, err := Get(key)
	if err != nil {
		return nil, fmt.Errorf("获取用户在线状态失败: %w", err)
	}

	var presence PresenceData
	if err := json.Unmarshal([]byte(data), &presence); err != nil {
		return nil, fmt.Errorf("反序列化在线状态失败: %w", err)
	}

	return &presence, nil
}

// IsUserOnline 检查用户是否在线
func IsUserOnline(uid string) (bool, error) {
	exists, err := Exists(PresenceKeyPrefix + uid)
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}

	return exists > 0, nil
}

// PresenceStore 在线状态查询的实例封装
// 业务层以接口形式注入，测试时可替换
type PresenceStore struct{}

// NewPresenceStore 创建在线状态存储
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{}
}

// IsOnline 检查用户是否在线
func (s *PresenceStore) IsOnline(uid string) (bool, error) {
	return IsUserOnline(uid)
}

// RefreshUserPresence 刷新用户在线状态（延长TTL）
func RefreshUserPresence(uid string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	if err := Expire(PresenceKeyPrefix+uid, PresenceTTL); err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}

	return nil
}
