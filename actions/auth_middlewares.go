package actions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/logger"
)

// Restrict allows only requests carrying a valid bearer token and stores
// the authenticated user id on the context for the handlers
func (actions *Actions) Restrict() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger(c)
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			log.Debug().Str("section", "restrict").Msg("Missing token")
			abortWithError(c, Unauthorized, "Unauthorized")
			return
		}
		actions.restrictByToken(c, token)
	}
}

// Restrict user access based on the given token
func (actions *Actions) restrictByToken(c *gin.Context, token string) {
	log := logger.GetLogger(c)
	claims, err := ParseToken(token, actions.jwtTokenSecret)
	// check that the token is valid
	if err != nil {
		_ = c.Error(err)
		log.Warn().Err(err).Str("section", "restrict:token").Msg("Invalid token received")
		abortWithError(c, Unauthorized, "Unauthorized")
		return
	}
	// load the ID of the user from the token
	sub, ok := claims["sub"].(string)
	if !ok {
		log.Warn().Str("section", "restrict:token").Msg("Token is missing the 'sub' claim")
		abortWithError(c, AccessDenied, "Access denied")
		return
	}
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		_ = c.Error(err)
		log.Warn().Err(err).Str("section", "restrict:token").Msg("Unable to load user id from token 'sub' claim")
		abortWithError(c, AccessDenied, "Access denied")
		return
	}
	c.Set("auth_user_id", userID)
}

// ParseToken validates a token string and returns its claims
func ParseToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if token == nil {
		return jwt.MapClaims{}, fmt.Errorf("Invalid token")
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return jwt.MapClaims{}, err
}
