package actions

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/httputils"
	"github.com/chuanlbx-ui/zhongdao-api-sub012/logger"
)

// Ping godoc
func Ping(c *gin.Context) {
	c.JSON(OK, "pong")
}

func abortWithError(c *gin.Context, code int, message string) {
	l := getlog(c)
	l.Debug().Stack().Int("resp_code", code).Msg(message)
	c.AbortWithStatusJSON(code, httputils.RequestError{Error: message})
}

func getlog(c *gin.Context) zerolog.Logger {
	return logger.GetLogger(c)
}

func getUserID(c *gin.Context) (uint64, bool) {
	iUserID, ok := c.Get("auth_user_id")
	if !ok {
		return 0, false
	}
	return iUserID.(uint64), true
}

func getQueryAsInt(c *gin.Context, name string, def int) int {
	val := c.Query(name)
	if val == "" {
		return def
	}
	param, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return param
}
