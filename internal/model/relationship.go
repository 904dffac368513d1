package model

import (
	"time"
)

// Relationship 好友关系记录
// 每段逻辑关系存两份：发起方命名空间下以对方ID为键一份，接收方命名空间下以发起方ID为键一份
// 两份记录的 Status 必须保持一致（并发写入只成功一半时允许短暂不一致，下次写入修复）
// Status: pending/accepted/rejected
// 本核心不提供删除（没有解除好友操作）

type Relationship struct {
	OwnerUID  string     `gorm:"type:varchar(64);primaryKey;comment:命名空间所属用户ID"`
	OtherUID  string     `gorm:"type:varchar(64);primaryKey;comment:记录键(对方用户ID)"`
	FromUID   string     `gorm:"type:varchar(64);not null;index;comment:发起方ID"`
	ToUID     string     `gorm:"type:varchar(64);not null;index;comment:接收方ID"`
	Status    string     `gorm:"type:varchar(32);default:'pending';index;comment:关系状态"`
	CreatedAt time.Time  `gorm:"index;comment:创建时间"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false;comment:状态变更时间"`
}

func (Relationship) TableName() string { return "relationship" }

// 关系状态常量
const (
	RelationshipPending  = "pending"
	RelationshipAccepted = "accepted"
	RelationshipRejected = "rejected"
)

// CounterpartUID 返回记录中非 uid 的那一方
func (r *Relationship) CounterpartUID(uid string) string {
	if r.FromUID == uid {
		return r.ToUID
	}
	return r.FromUID
}
