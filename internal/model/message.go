package model

import (
	"sort"
	"strings"
	"time"
)

// Message 聊天消息
// 以会话键（两个用户ID排序后拼接）归属到同一个有序集合
// 发送后不可修改、不可删除

type Message struct {
	ID             string    `gorm:"type:varchar(64);primaryKey;comment:消息ID"`
	ConversationID string    `gorm:"type:varchar(130);not null;index:idx_conv_created;comment:会话键"`
	FromUID        string    `gorm:"type:varchar(64);not null;comment:发送者ID"`
	ToUID          string    `gorm:"type:varchar(64);not null;comment:接收者ID"`
	Text           string    `gorm:"type:text;not null;comment:消息内容"`
	CreatedAt      time.Time `gorm:"index:idx_conv_created;comment:创建时间"`
}

func (Message) TableName() string { return "message" }

// ConversationKey 计算会话键：两个用户ID按字典序排序后用下划线拼接
// 保证 ConversationKey(a,b) == ConversationKey(b,a)
func ConversationKey(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}
