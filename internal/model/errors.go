package model

import "errors"

// 业务错误定义
// 存储层瞬时故障直接用 %w 包装上抛，由调用方决定重试
var (
	// ErrRelationshipNotFound 更新目标关系记录不存在
	ErrRelationshipNotFound = errors.New("relationship not found")
	// ErrProfileNotFound 用户资料不存在
	ErrProfileNotFound = errors.New("profile not found")
)
