package model_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

func TestIndirectRateClamp(t *testing.T) {
	Convey("Given a rate row with three indirect tiers", t, func() {
		rates := model.CommissionRates{
			Direct:   0.05,
			Indirect: []float64{0.03, 0.02, 0.01},
		}

		Convey("depth 1 is the direct tier, not an indirect one", func() {
			So(rates.IndirectAt(1), ShouldEqual, 0)
		})

		Convey("depths 2..4 map onto the table", func() {
			So(rates.IndirectAt(2), ShouldEqual, 0.03)
			So(rates.IndirectAt(3), ShouldEqual, 0.02)
			So(rates.IndirectAt(4), ShouldEqual, 0.01)
		})

		Convey("depths past the table earn zero instead of the last tier", func() {
			So(rates.IndirectAt(5), ShouldEqual, 0)
			So(rates.IndirectAt(50), ShouldEqual, 0)
		})
	})
}

func TestComputeUpgradeProgress(t *testing.T) {
	reqs := model.LevelRequirements{
		model.UserLevel_VIP: {DirectReferrals: 4, TeamSales: 1000},
	}

	Convey("Given a normal user partway to vip", t, func() {
		metrics := model.UpgradeMetrics{DirectReferrals: 2, TeamSales: 1000}
		progress := model.ComputeUpgradeProgress(9, model.UserLevel_Normal, metrics, reqs)

		So(progress.TargetLevel, ShouldEqual, model.UserLevel_VIP)
		So(len(progress.Requirements), ShouldEqual, 2)
		So(progress.ProgressPercentage, ShouldEqual, 75) // (50 + 100) / 2
		So(progress.Eligible, ShouldBeFalse)

		Convey("overshooting a requirement does not push the percentage past 100", func() {
			metrics.TeamSales = 50000
			progress = model.ComputeUpgradeProgress(9, model.UserLevel_Normal, metrics, reqs)
			So(progress.ProgressPercentage, ShouldEqual, 75)
		})

		Convey("meeting every requirement makes the user eligible at exactly 100", func() {
			metrics.DirectReferrals = 4
			progress = model.ComputeUpgradeProgress(9, model.UserLevel_Normal, metrics, reqs)
			So(progress.ProgressPercentage, ShouldEqual, 100)
			So(progress.Eligible, ShouldBeTrue)
		})
	})

	Convey("A director has no further level to progress to", t, func() {
		progress := model.ComputeUpgradeProgress(9, model.UserLevel_Director, model.UpgradeMetrics{}, reqs)
		So(progress.TargetLevel, ShouldEqual, model.UserLevel_Director)
		So(progress.Requirements, ShouldBeEmpty)
		So(progress.ProgressPercentage, ShouldEqual, 100)
		So(progress.Eligible, ShouldBeFalse)
	})

	Convey("Qualified direct requirements read the qualified counter", t, func() {
		leveledReqs := model.LevelRequirements{
			model.UserLevel_Star1: {DirectReferrals: 3, DirectOfLevel: model.UserLevel_VIP},
		}
		metrics := model.UpgradeMetrics{DirectReferrals: 10, QualifiedDirects: 1}
		progress := model.ComputeUpgradeProgress(9, model.UserLevel_VIP, metrics, leveledReqs)

		So(len(progress.Requirements), ShouldEqual, 1)
		So(progress.Requirements[0].Name, ShouldEqual, "direct_referrals_vip")
		So(progress.Requirements[0].Current, ShouldEqual, 1)
		So(progress.Eligible, ShouldBeFalse)
	})
}

func TestUserLevelOrdering(t *testing.T) {
	Convey("Levels are strictly ordered from normal to director", t, func() {
		So(model.UserLevel_Normal.Rank(), ShouldBeLessThan, model.UserLevel_VIP.Rank())
		So(model.UserLevel_VIP.Rank(), ShouldBeLessThan, model.UserLevel_Star1.Rank())
		So(model.UserLevel_Star5.Rank(), ShouldBeLessThan, model.UserLevel_Director.Rank())

		next, ok := model.UserLevel_Star5.Next()
		So(ok, ShouldBeTrue)
		So(next, ShouldEqual, model.UserLevel_Director)

		_, ok = model.UserLevel_Director.Next()
		So(ok, ShouldBeFalse)
	})
}
