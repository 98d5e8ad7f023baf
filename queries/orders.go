package queries

import (
	"context"
	"time"

	"github.com/ericlagergren/decimal"
	"github.com/ericlagergren/decimal/sql/postgres"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

// SellerTotal is the aggregate row of one seller, used by the leaderboards
type SellerTotal struct {
	UserID   uint64            `gorm:"column:seller_id"`
	Nickname string            `gorm:"column:nickname"`
	Level    model.UserLevel   `gorm:"column:user_level"`
	Total    *postgres.Decimal `gorm:"column:total" sql:"type:decimal(36,18)"`
}

// SalesSummary sums the qualifying order amounts of the given sellers over
// the window. An empty seller set short circuits to zero.
func (repo *Repo) SalesSummary(ctx context.Context, sellerIDs []uint64, from, to time.Time) (*decimal.Big, int64, error) {
	if len(sellerIDs) == 0 {
		return conv.NewDecimalWithPrecision(), 0, nil
	}
	data := &struct {
		Total *postgres.Decimal
		Cnt   int64
	}{Total: &postgres.Decimal{V: new(decimal.Big)}}

	q := repo.ConnReader.WithContext(ctx).
		Table("orders").
		Select("coalesce(sum(total_amount), 0) as total, count(*) as cnt").
		Where("seller_id IN ?", sellerIDs).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(data)
	if q.Error != nil {
		return nil, 0, q.Error
	}
	if data.Total == nil || data.Total.V == nil {
		return conv.NewDecimalWithPrecision(), data.Cnt, nil
	}
	return data.Total.V, data.Cnt, nil
}

// SellerSales sums one seller's qualifying orders over the window
func (repo *Repo) SellerSales(ctx context.Context, sellerID uint64, from, to time.Time) (*decimal.Big, int64, error) {
	return repo.SalesSummary(ctx, []uint64{sellerID}, from, to)
}

// DistinctBuyerCount counts the distinct customers of a seller in the window
func (repo *Repo) DistinctBuyerCount(ctx context.Context, sellerID uint64, from, to time.Time) (int64, error) {
	var count int64
	q := repo.ConnReader.WithContext(ctx).
		Table("orders").
		Select("count(distinct buyer_id)").
		Where("seller_id = ?", sellerID).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&count)
	return count, q.Error
}

// RepeatBuyerCount counts customers with more than one qualifying order of
// the seller inside the window
func (repo *Repo) RepeatBuyerCount(ctx context.Context, sellerID uint64, from, to time.Time) (int64, error) {
	sub := repo.ConnReader.
		Table("orders").
		Select("buyer_id").
		Where("seller_id = ?", sellerID).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("buyer_id").
		Having("count(*) > 1")

	var count int64
	q := repo.ConnReader.WithContext(ctx).
		Table("(?) as repeat_buyers", sub).
		Select("count(*)").
		Scan(&count)
	return count, q.Error
}

// NewBuyerCount counts customers whose first qualifying order with the
// seller falls inside the window
func (repo *Repo) NewBuyerCount(ctx context.Context, sellerID uint64, from, to time.Time) (int64, error) {
	previous := repo.ConnReader.
		Table("orders").
		Select("buyer_id").
		Where("seller_id = ?", sellerID).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at < ?", from)

	var count int64
	q := repo.ConnReader.WithContext(ctx).
		Table("orders").
		Select("count(distinct buyer_id)").
		Where("seller_id = ?", sellerID).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("buyer_id NOT IN (?)", previous).
		Scan(&count)
	return count, q.Error
}

// ActiveSellerCount counts the members of the given set with at least one
// qualifying order inside the window
func (repo *Repo) ActiveSellerCount(ctx context.Context, sellerIDs []uint64, from, to time.Time) (int64, error) {
	if len(sellerIDs) == 0 {
		return 0, nil
	}
	var count int64
	q := repo.ConnReader.WithContext(ctx).
		Table("orders").
		Select("count(distinct seller_id)").
		Where("seller_id IN ?", sellerIDs).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&count)
	return count, q.Error
}

// LevelDistribution buckets the members under the given path by level and
// sums each bucket's qualifying sales in a single grouped query
func (repo *Repo) LevelDistribution(ctx context.Context, path model.TeamPath, from, to time.Time) ([]model.LevelBucket, error) {
	buckets := make([]model.LevelBucket, 0)
	q := repo.ConnReader.WithContext(ctx).
		Table("users u").
		Select("u.user_level, count(distinct u.id) as members, coalesce(sum(o.total_amount), 0) as sales").
		Joins(
			"left join orders o ON o.seller_id = u.id AND o.status IN ? AND o.created_at >= ? AND o.created_at < ?",
			model.QualifyingOrderStatuses, from, to,
		).
		Where("u.team_path LIKE ?", path.ChildPrefix()).
		Where("u.id <> ?", path.OwnerID()).
		Where("u.status <> ?", model.UserStatusDeleted).
		Group("u.user_level").
		Order("u.user_level ASC").
		Find(&buckets)
	if q.Error != nil {
		return nil, q.Error
	}
	return buckets, nil
}

// TopSellers runs the personal leaderboard aggregation, one grouped query
// over every active user above the normal level, sorted and limited in SQL
func (repo *Repo) TopSellers(ctx context.Context, from, to time.Time, limit int) ([]SellerTotal, error) {
	totals := make([]SellerTotal, 0)
	q := repo.ConnReader.WithContext(ctx).
		Table("orders o").
		Select("o.seller_id as seller_id, u.nickname, u.user_level, sum(o.total_amount) as total").
		Joins("inner join users u ON u.id = o.seller_id").
		Where("u.status = ?", model.UserStatusActive).
		Where("u.user_level <> ?", model.UserLevel_Normal).
		Where("o.status IN ?", model.QualifyingOrderStatuses).
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Group("o.seller_id, u.nickname, u.user_level").
		Order("total DESC").
		Limit(limit).
		Find(&totals)
	if q.Error != nil {
		return nil, q.Error
	}
	return totals, nil
}

// SubtreeSales sums the qualifying sales of a whole subtree, the path's
// owner included, without materializing the member list
func (repo *Repo) SubtreeSales(ctx context.Context, path model.TeamPath, from, to time.Time) (*decimal.Big, int64, error) {
	data := &struct {
		Total *postgres.Decimal
		Cnt   int64
	}{Total: &postgres.Decimal{V: new(decimal.Big)}}

	members := repo.ConnReader.
		Table("users").
		Select("id").
		Where("team_path LIKE ?", path.ChildPrefix())

	q := repo.ConnReader.WithContext(ctx).
		Table("orders").
		Select("coalesce(sum(total_amount), 0) as total, count(*) as cnt").
		Where("seller_id IN (?)", members).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(data)
	if q.Error != nil {
		return nil, 0, q.Error
	}
	if data.Total == nil || data.Total.V == nil {
		return conv.NewDecimalWithPrecision(), data.Cnt, nil
	}
	return data.Total.V, data.Cnt, nil
}

// DownstreamSales sums the qualifying sales of a subtree excluding its owner
func (repo *Repo) DownstreamSales(ctx context.Context, path model.TeamPath, from, to time.Time) (*decimal.Big, error) {
	data := &struct{ Total *postgres.Decimal }{Total: &postgres.Decimal{V: new(decimal.Big)}}

	members := repo.ConnReader.
		Table("users").
		Select("id").
		Where("team_path LIKE ?", path.ChildPrefix()).
		Where("id <> ?", path.OwnerID())

	q := repo.ConnReader.WithContext(ctx).
		Table("orders").
		Select("coalesce(sum(total_amount), 0) as total").
		Where("seller_id IN (?)", members).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(data)
	if q.Error != nil {
		return nil, q.Error
	}
	if data.Total == nil || data.Total.V == nil {
		return conv.NewDecimalWithPrecision(), nil
	}
	return data.Total.V, nil
}

// MonthlySalesSeries returns the seller's qualifying sales grouped by
// calendar month since the given time, oldest month first
func (repo *Repo) MonthlySalesSeries(ctx context.Context, sellerID uint64, since time.Time) ([]model.MonthlyCommission, error) {
	series := make([]model.MonthlyCommission, 0)
	q := repo.ConnReader.WithContext(ctx).
		Table("orders").
		Select("to_char(created_at, 'YYYY-MM') as month, coalesce(sum(total_amount), 0) as amount").
		Where("seller_id = ?", sellerID).
		Where("status IN ?", model.QualifyingOrderStatuses).
		Where("created_at >= ?", since).
		Group("month").
		Order("month ASC").
		Find(&series)
	if q.Error != nil {
		return nil, q.Error
	}
	return series, nil
}
