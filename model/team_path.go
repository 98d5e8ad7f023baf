package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// TeamPath is the materialized ancestor path of a user inside the team tree,
// stored as "/1/7/42/" where 42 is the owner and 1 the root ancestor. The
// subtree of a user is resolved with a single prefix match on this column,
// no matter how deep the tree is.
type TeamPath string

// NewTeamPath builds the path for a user placed under the given parent path
func NewTeamPath(parent TeamPath, userID uint64) TeamPath {
	if parent == "" {
		return TeamPath(fmt.Sprintf("/%d/", userID))
	}
	return TeamPath(fmt.Sprintf("%s%d/", parent, userID))
}

func (p TeamPath) String() string {
	return string(p)
}

func (p TeamPath) IsValid() bool {
	s := string(p)
	if len(s) < 3 || s[0] != '/' || s[len(s)-1] != '/' {
		return false
	}
	for _, part := range strings.Split(strings.Trim(s, "/"), "/") {
		if _, err := strconv.ParseUint(part, 10, 64); err != nil {
			return false
		}
	}
	return true
}

// OwnerID returns the last component of the path, the user the path belongs to
func (p TeamPath) OwnerID() uint64 {
	parts := strings.Split(strings.Trim(string(p), "/"), "/")
	if len(parts) == 0 {
		return 0
	}
	id, _ := strconv.ParseUint(parts[len(parts)-1], 10, 64)
	return id
}

// Depth is the number of ancestors above the owner
func (p TeamPath) Depth() int {
	if !p.IsValid() {
		return 0
	}
	return strings.Count(string(p), "/") - 2
}

// Contains reports whether the given user is a path component, the owner included
func (p TeamPath) Contains(userID uint64) bool {
	return strings.Contains(string(p), fmt.Sprintf("/%d/", userID))
}

// ChildPrefix is the SQL LIKE prefix that matches every descendant path.
// Since % also matches the empty string the owner's own row matches too,
// so subtree queries that must exclude the owner filter the owner id out.
func (p TeamPath) ChildPrefix() string {
	return string(p) + "%"
}

// IsDescendantOf reports whether the owner sits strictly below the other path's owner
func (p TeamPath) IsDescendantOf(ancestor TeamPath) bool {
	return p != ancestor && strings.HasPrefix(string(p), string(ancestor))
}

// DepthBelow is the number of tree levels between the owner and the given
// ancestor, 1 for a direct child, 0 when the path is not below it
func (p TeamPath) DepthBelow(ancestor TeamPath) int {
	if !p.IsDescendantOf(ancestor) {
		return 0
	}
	rest := strings.TrimPrefix(string(p), string(ancestor))
	return strings.Count(rest, "/")
}

// Scan implements sql.Scanner
func (p *TeamPath) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = ""
	case string:
		*p = TeamPath(v)
	case []byte:
		*p = TeamPath(v)
	default:
		return fmt.Errorf("unsupported team path type %T", value)
	}
	return nil
}

// Value implements driver.Valuer
func (p TeamPath) Value() (driver.Value, error) {
	return string(p), nil
}
