package service

import (
	"context"
	"strings"

	"friends-server/internal/model"
	"friends-server/internal/repository"
)

// SearchWindow 搜索只扫描最新的50条资料
// 窗口之外的用户搜不到，这是规模上的取舍；要改只能换成有索引的搜索后端，
// 不要改成全表扫描
const SearchWindow = 50

// SearchService 用户搜索服务
type SearchService struct {
	profileRepo repository.ProfileStore
}

// NewSearchService 创建SearchService实例
func NewSearchService(profileRepo repository.ProfileStore) *SearchService {
	return &SearchService{profileRepo: profileRepo}
}

// SearchUsers 大小写不敏感的子串搜索
// 搜索词去空白并转小写；空搜索词直接返回空结果，不访问存储
// 拉取最新50条资料后在服务端过滤：用户名、显示名、邮箱任一包含搜索词即命中
// 结果保持存储返回的时间倒序，不做相关性排序
func (s *SearchService) SearchUsers(ctx context.Context, term string) ([]*model.Profile, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []*model.Profile{}, nil
	}

	profiles, err := s.profileRepo.ListNewest(ctx, SearchWindow)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Profile, 0, len(profiles))
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Username), term) ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Email), term) {
			matched = append(matched, p)
		}
	}

	return matched, nil
}
