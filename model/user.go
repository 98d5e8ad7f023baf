package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/ericlagergren/decimal/sql/postgres"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus defined the list of possible user statuses
type UserStatus string

const (
	// UserStatusPending when user is newly registered and not yet confirmed
	UserStatusPending UserStatus = "pending"
	// UserStatusActive when user is active in the system
	UserStatusActive UserStatus = "active"
	// UserStatusBlocked when user is blocked by the admin
	UserStatusBlocked UserStatus = "blocked"
	// UserStatusDeleted when user is soft deleted, the record is never removed
	UserStatusDeleted UserStatus = "deleted"
)

func (u UserStatus) String() string {
	return string(u)
}

// UserLevel is the distribution level of a user inside the team tree
type UserLevel string

const (
	UserLevel_Normal   UserLevel = "normal"
	UserLevel_VIP      UserLevel = "vip"
	UserLevel_Star1    UserLevel = "star_1"
	UserLevel_Star2    UserLevel = "star_2"
	UserLevel_Star3    UserLevel = "star_3"
	UserLevel_Star4    UserLevel = "star_4"
	UserLevel_Star5    UserLevel = "star_5"
	UserLevel_Director UserLevel = "director"
)

var userLevelRanks = map[UserLevel]int{
	UserLevel_Normal:   0,
	UserLevel_VIP:      1,
	UserLevel_Star1:    2,
	UserLevel_Star2:    3,
	UserLevel_Star3:    4,
	UserLevel_Star4:    5,
	UserLevel_Star5:    6,
	UserLevel_Director: 7,
}

// UserLevels ordered from lowest to highest
var UserLevels = []UserLevel{
	UserLevel_Normal,
	UserLevel_VIP,
	UserLevel_Star1,
	UserLevel_Star2,
	UserLevel_Star3,
	UserLevel_Star4,
	UserLevel_Star5,
	UserLevel_Director,
}

func (l UserLevel) String() string {
	return string(l)
}

// Rank returns the ordinal position of the level, normal being 0
func (l UserLevel) Rank() int {
	return userLevelRanks[l]
}

func (l UserLevel) IsValid() bool {
	_, ok := userLevelRanks[l]
	return ok
}

// Next returns the next level in the progression or false for the top level
func (l UserLevel) Next() (UserLevel, bool) {
	rank := l.Rank()
	if !l.IsValid() || rank == len(UserLevels)-1 {
		return l, false
	}
	return UserLevels[rank+1], true
}

// GetUserLevelFromString -
func GetUserLevelFromString(s string) (UserLevel, error) {
	level := UserLevel(s)
	if !level.IsValid() {
		return UserLevel_Normal, ErrLevelInvalid
	}
	return level, nil
}

// User structure
type User struct {
	ID uint64 `sql:"type: bigint" gorm:"primary_key" json:"id"`

	Email    string `gorm:"unique;" json:"email"`
	Phone    string `gorm:"unique;" json:"phone"`
	Nickname string `json:"nickname"`
	Password string `gorm:"not null" json:"-"`
	Avatar   string `json:"avatar"`

	Level  UserLevel  `gorm:"column:user_level" sql:"not null;type:user_level_t" json:"user_level"`
	Status UserStatus `sql:"not null;type:user_status_t" json:"status"`

	// ParentID is the direct upstream referrer, nil for root accounts
	ParentID *uint64  `gorm:"column:parent_id" sql:"type:bigint REFERENCES users(id)" json:"parent_id"`
	TeamPath TeamPath `gorm:"column:team_path" json:"team_path"`

	PointsBalance *postgres.Decimal `gorm:"column:points_balance" sql:"type:decimal(36,18)" json:"points_balance"`
	DirectCount   int               `gorm:"column:direct_count" json:"direct_count"`
	TeamCount     int               `gorm:"column:team_count" json:"team_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMember is the projection used by the team calculators
type TeamMember struct {
	UserID uint64    `gorm:"column:id" json:"user_id"`
	Level  UserLevel `gorm:"column:user_level" json:"user_level"`
	Path   TeamPath  `gorm:"column:team_path" json:"-"`
}

// LevelsAtOrAbove lists every level ranking at least as high as the given one
func LevelsAtOrAbove(level UserLevel) []UserLevel {
	levels := make([]UserLevel, 0, len(UserLevels))
	for _, l := range UserLevels {
		if l.Rank() >= level.Rank() {
			levels = append(levels, l)
		}
	}
	return levels
}

// NewUser creates a new user structure under the given parent
func NewUser(email, phone, pass string, parent *User) *User {
	user := &User{
		Email:    email,
		Phone:    phone,
		Password: pass,
		Level:    UserLevel_Normal,
		Status:   UserStatusPending,
	}
	if parent != nil {
		parentID := parent.ID
		user.ParentID = &parentID
	}
	return user
}

// Model Methods

// EncodePass encode the password
func (user *User) EncodePass() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	return nil
}

// ValidatePass check if the given password matches the user
func (user *User) ValidatePass(pass string) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(pass)); err != nil {
		return false
	}
	return true
}

// GetUserStatusFromString -
func GetUserStatusFromString(s string) (UserStatus, error) {
	switch s {
	case "pending":
		return UserStatusPending, nil
	case "active":
		return UserStatusActive, nil
	case "blocked":
		return UserStatusBlocked, nil
	case "deleted":
		return UserStatusDeleted, nil
	default:
		return UserStatusPending, errors.New("Status is not valid")
	}
}

func (user *User) IsActive() bool {
	return user.Status == UserStatusActive
}

func (user *User) DisplayName() string {
	if user.Nickname != "" {
		return user.Nickname
	}
	return fmt.Sprintf("user-%d", user.ID)
}
