package queries

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

// GetUserByID -
func (repo *Repo) GetUserByID(ctx context.Context, userID uint64) (*model.User, error) {
	user := &model.User{}
	q := repo.ConnReader.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		First(user)
	if q.Error != nil {
		if errors.Is(q.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, q.Error
	}
	return user, nil
}

// GetTeamMembers resolves every descendant of the given path with a single
// prefix match on the materialized team path, no matter how deep the tree
// is. The path's owner is excluded since descendant paths are strictly longer.
func (repo *Repo) GetTeamMembers(ctx context.Context, path model.TeamPath) ([]model.TeamMember, error) {
	members := make([]model.TeamMember, 0)
	q := repo.ConnReader.WithContext(ctx).
		Table("users").
		Select("id, user_level, team_path").
		Where("team_path LIKE ?", path.ChildPrefix()).
		Where("id <> ?", path.OwnerID()).
		Where("status <> ?", model.UserStatusDeleted).
		Order("id ASC").
		Find(&members)
	if q.Error != nil {
		return nil, q.Error
	}
	return members, nil
}

// CountTeamMembers -
func (repo *Repo) CountTeamMembers(ctx context.Context, path model.TeamPath) (int64, error) {
	var count int64
	q := repo.ConnReader.WithContext(ctx).
		Table("users").
		Where("team_path LIKE ?", path.ChildPrefix()).
		Where("id <> ?", path.OwnerID()).
		Where("status <> ?", model.UserStatusDeleted).
		Count(&count)
	return count, q.Error
}

// GetDirectReferrals returns the users directly referred by the given user
func (repo *Repo) GetDirectReferrals(ctx context.Context, userID uint64) ([]model.TeamMember, error) {
	referrals := make([]model.TeamMember, 0)
	q := repo.ConnReader.WithContext(ctx).
		Table("users").
		Select("id, user_level, team_path").
		Where("parent_id = ?", userID).
		Where("status <> ?", model.UserStatusDeleted).
		Order("id ASC").
		Find(&referrals)
	if q.Error != nil {
		return nil, q.Error
	}
	return referrals, nil
}

// CountDirectReferralsAtLevel counts direct referrals holding at least the
// given level, used by the progression requirements
func (repo *Repo) CountDirectReferralsAtLevel(ctx context.Context, userID uint64, levels []model.UserLevel) (int64, error) {
	var count int64
	q := repo.ConnReader.WithContext(ctx).
		Table("users").
		Where("parent_id = ?", userID).
		Where("user_level IN ?", levels).
		Where("status <> ?", model.UserStatusDeleted).
		Count(&count)
	return count, q.Error
}

// GetTeamLeaders lists every active user above the normal level, the
// candidate set of the team leaderboard
func (repo *Repo) GetTeamLeaders(ctx context.Context) ([]model.User, error) {
	leaders := make([]model.User, 0)
	q := repo.ConnReader.WithContext(ctx).
		Table("users").
		Where("user_level <> ?", model.UserLevel_Normal).
		Where("status = ?", model.UserStatusActive).
		Order("id ASC").
		Find(&leaders)
	if q.Error != nil {
		return nil, q.Error
	}
	return leaders, nil
}

// GetTopReferrers ranks active users by their stored direct referral counter
func (repo *Repo) GetTopReferrers(ctx context.Context, limit int) ([]model.User, error) {
	users := make([]model.User, 0)
	q := repo.ConnReader.WithContext(ctx).
		Table("users").
		Where("status = ?", model.UserStatusActive).
		Where("direct_count > 0").
		Order("direct_count DESC").
		Limit(limit).
		Find(&users)
	if q.Error != nil {
		return nil, q.Error
	}
	return users, nil
}
