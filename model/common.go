package model

import (
	"errors"
	"fmt"

	"github.com/ericlagergren/decimal/sql/postgres"
	jsoniter "github.com/json-iterator/go"

	"github.com/chuanlbx-ui/zhongdao-api-sub012/conv"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserNotActive          = errors.New("user is not active")
	ErrPeriodInvalid          = errors.New("invalid period format")
	ErrLevelInvalid           = errors.New("invalid user level")
	ErrLeaderboardTypeInvalid = errors.New("invalid leaderboard type")
)

// JSONDecimal wraps a nullable database decimal so it marshals as a plain number string
type JSONDecimal struct {
	postgres.Decimal
}

func (b JSONDecimal) MarshalJSON() ([]byte, error) {
	out := conv.FmtDecimal(&b.Decimal)
	return json.Marshal(out)
}

// UnmarshalJSON accepts the string form produced by MarshalJSON as well as
// a bare JSON number, so cached aggregates round trip cleanly
func (b *JSONDecimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	dec := conv.NewDecimalWithPrecision()
	if _, ok := dec.SetString(s); !ok {
		return fmt.Errorf("invalid decimal value %q", s)
	}
	b.Decimal = postgres.Decimal{V: dec}
	return nil
}
