package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/monitor"
)

// GetUpgradeProgress compares the user's current numbers against the next
// level's requirement table. Team sales requirements are measured over the
// current calendar month. The call is read only, the user's level is never
// changed here.
func (service *Service) GetUpgradeProgress(ctx context.Context, userID uint64) (*model.UpgradeProgress, error) {
	defer func(start time.Time) {
		monitor.CalculatorDuration.WithLabelValues("progression").Observe(time.Since(start).Seconds())
	}(time.Now())

	user, err := service.ValidatePerformanceData(ctx, userID)
	if err != nil {
		return nil, err
	}

	target, hasNext := user.Level.Next()
	metrics := model.UpgradeMetrics{}

	if hasNext {
		req := service.cfg.Requirements[target]
		from, to := model.MonthOf(service.now().UTC()).Window()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			teamSize, err := service.repo.CountTeamMembers(gctx, user.TeamPath)
			if err != nil {
				return err
			}
			metrics.TeamSize = int(teamSize)
			return nil
		})
		g.Go(func() error {
			teamSales, _, err := service.repo.SubtreeSales(gctx, user.TeamPath, from, to)
			if err != nil {
				return err
			}
			metrics.TeamSales = conv.ToFloat64(teamSales)
			return nil
		})
		g.Go(func() error {
			directs, err := service.repo.GetDirectReferrals(gctx, user.ID)
			if err != nil {
				return err
			}
			metrics.DirectReferrals = len(directs)
			return nil
		})
		if req.DirectOfLevel != "" {
			g.Go(func() error {
				qualified, err := service.repo.CountDirectReferralsAtLevel(gctx, user.ID, model.LevelsAtOrAbove(req.DirectOfLevel))
				if err != nil {
					return err
				}
				metrics.QualifiedDirects = int(qualified)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	progress := model.ComputeUpgradeProgress(user.ID, user.Level, metrics, service.cfg.Requirements)
	return &progress, nil
}
