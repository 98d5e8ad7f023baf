package actions

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/model"
)

// getPeriodParam reads the ?period= query parameter. An absent parameter
// means the current month, a malformed one is a client error.
func (actions *Actions) getPeriodParam(c *gin.Context) (model.Period, bool) {
	raw := c.Query("period")
	if raw == "" {
		return model.MonthOf(actions.service.Now().UTC()), true
	}
	period, err := model.ParsePeriod(raw)
	if err != nil {
		abortWithError(c, BadRequest, "Invalid period format")
		return model.Period{}, false
	}
	return period, true
}

func performanceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		abortWithError(c, NotFound, "User not found")
	case errors.Is(err, model.ErrUserNotActive):
		abortWithError(c, AccessDenied, "User is not active")
	case errors.Is(err, model.ErrPeriodInvalid):
		abortWithError(c, BadRequest, "Invalid period format")
	default:
		abortWithError(c, ServerError, fallback)
	}
}

// GetPersonalPerformance godoc
// swagger:route GET /performance/personal performance get_personal_performance
// Get personal performance
//
// Returns the current user's sales aggregates for the requested period.
//
//	Responses:
//	  200: PersonalPerformance
//	  400: RequestErrorResp
//	  404: RequestErrorResp
func (actions *Actions) GetPersonalPerformance(c *gin.Context) {
	userID, _ := getUserID(c)
	period, ok := actions.getPeriodParam(c)
	if !ok {
		return
	}

	data, err := actions.service.GetPersonalPerformance(c.Request.Context(), userID, period)
	if err != nil {
		performanceError(c, err, "Unable to get personal performance")
		return
	}
	c.JSON(OK, data)
}

// GetTeamPerformance godoc
// swagger:route GET /performance/team performance get_team_performance
// Get team performance
//
// Returns the aggregates of the current user's whole downstream team.
//
//	Responses:
//	  200: TeamPerformance
//	  400: RequestErrorResp
//	  404: RequestErrorResp
func (actions *Actions) GetTeamPerformance(c *gin.Context) {
	userID, _ := getUserID(c)
	period, ok := actions.getPeriodParam(c)
	if !ok {
		return
	}

	data, err := actions.service.GetTeamPerformance(c.Request.Context(), userID, period)
	if err != nil {
		performanceError(c, err, "Unable to get team performance")
		return
	}
	c.JSON(OK, data)
}

// GetTeamMembers godoc
// swagger:route GET /performance/team/members performance get_team_members
// Get team members
//
// Returns every member of the current user's downstream team.
//
//	Responses:
//	  200: TeamMembers
//	  404: RequestErrorResp
func (actions *Actions) GetTeamMembers(c *gin.Context) {
	userID, _ := getUserID(c)

	data, err := actions.service.GetAllTeamMembers(c.Request.Context(), userID)
	if err != nil {
		performanceError(c, err, "Unable to get team members")
		return
	}
	c.JSON(OK, data)
}

// GetReferralPerformance godoc
// swagger:route GET /performance/referral performance get_referral_performance
// Get referral performance
//
// Returns referral revenue and commission split by direct and indirect sets.
//
//	Responses:
//	  200: ReferralPerformance
//	  400: RequestErrorResp
//	  404: RequestErrorResp
func (actions *Actions) GetReferralPerformance(c *gin.Context) {
	userID, _ := getUserID(c)
	period, ok := actions.getPeriodParam(c)
	if !ok {
		return
	}

	data, err := actions.service.GetReferralPerformance(c.Request.Context(), userID, period)
	if err != nil {
		performanceError(c, err, "Unable to get referral performance")
		return
	}
	c.JSON(OK, data)
}

// GetLeaderboard godoc
// swagger:route GET /performance/leaderboard performance get_leaderboard
// Get leaderboard
//
// Returns the ranked board of the requested type with rank deltas against
// the previous period.
//
//	Responses:
//	  200: Leaderboard
//	  400: RequestErrorResp
func (actions *Actions) GetLeaderboard(c *gin.Context) {
	typ := model.LeaderboardType(c.DefaultQuery("type", "personal"))
	if !typ.IsValid() {
		abortWithError(c, BadRequest, "Invalid leaderboard type")
		return
	}
	period, ok := actions.getPeriodParam(c)
	if !ok {
		return
	}
	limit := getQueryAsInt(c, "limit", 0)

	data, err := actions.service.GetPerformanceLeaderboard(c.Request.Context(), typ, period, limit)
	if err != nil {
		performanceError(c, err, "Unable to get leaderboard")
		return
	}
	c.JSON(OK, data)
}

// GetUpgradeProgress godoc
// swagger:route GET /performance/progression performance get_upgrade_progress
// Get upgrade progress
//
// Returns the current user's progress towards the next distribution level.
//
//	Responses:
//	  200: UpgradeProgress
//	  404: RequestErrorResp
func (actions *Actions) GetUpgradeProgress(c *gin.Context) {
	userID, _ := getUserID(c)

	data, err := actions.service.GetUpgradeProgress(c.Request.Context(), userID)
	if err != nil {
		performanceError(c, err, "Unable to get upgrade progress")
		return
	}
	c.JSON(OK, data)
}

// GetCommissionForecast godoc
// swagger:route GET /performance/forecast performance get_commission_forecast
// Get commission forecast
//
// Returns next month's projected commission from the user's sales trend.
//
//	Responses:
//	  200: CommissionForecast
//	  404: RequestErrorResp
func (actions *Actions) GetCommissionForecast(c *gin.Context) {
	userID, _ := getUserID(c)

	data, err := actions.service.GetCommissionForecast(c.Request.Context(), userID)
	if err != nil {
		performanceError(c, err, "Unable to get commission forecast")
		return
	}
	c.JSON(OK, data)
}
