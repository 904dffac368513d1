package model

import (
	"time"
)

// Profile 用户资料
// 注册时创建一次，核心业务只读不改
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文

type Profile struct {
	UID          string    `gorm:"type:varchar(64);primaryKey;comment:用户ID"`
	Email        string    `gorm:"type:varchar(128);uniqueIndex;comment:邮箱"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Name         string    `gorm:"type:varchar(64);comment:显示名称"`
	PasswordHash string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	CreatedAt    time.Time `gorm:"index;comment:创建时间"`
}

func (Profile) TableName() string { return "profile" }
