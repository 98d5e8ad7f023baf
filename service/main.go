package service

import (
	"context"
	"time"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/cache/performance"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/config"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/queries"
)

// Service is the performance facade called by the route layer. Every
// collaborator is injected through the constructor so tests can substitute
// a mocked repository or a degraded cache.
type Service struct {
	cfg   config.Config
	repo  *queries.Repo
	cache *performance.Cache
	now   func() time.Time
}

// NewService constructor
func NewService(cfg config.Config, repo *queries.Repo, cache *performance.Cache) *Service {
	return &Service{
		cfg:   cfg,
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Now returns the service clock, pinned in tests
func (service *Service) Now() time.Time {
	return service.now()
}

// ValidatePerformanceData checks that the subject of a performance request
// exists and is active before any calculator runs
func (service *Service) ValidatePerformanceData(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := service.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, model.ErrUserNotActive
	}
	return user, nil
}

// InvalidateUser drops every cached aggregate of the given user, called
// when an order of theirs reaches or leaves a qualifying status
func (service *Service) InvalidateUser(userID uint64) {
	service.cache.InvalidateTag(service.cache.TagUser(userID))
}
