// Package domain provides typed identifiers so a contact id cannot be passed where a user id is expected.
package domain

import (
	"strconv"

	dErrors "warden/pkg/domain-errors"
)

type (
	UserID     int64
	CustomerID int64
	ContactID  int64
	GroupID    int64
	EntityID   int64
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseID(s, "user ID")
	return UserID(id), err
}

func ParseGroupID(s string) (GroupID, error) {
	id, err := parseID(s, "group ID")
	return GroupID(id), err
}

func (id UserID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id CustomerID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id ContactID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id GroupID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id EntityID) String() string   { return strconv.FormatInt(int64(id), 10) }

func (id UserID) IsNil() bool     { return id <= 0 }
func (id CustomerID) IsNil() bool { return id <= 0 }
func (id ContactID) IsNil() bool  { return id <= 0 }
func (id GroupID) IsNil() bool    { return id <= 0 }
func (id EntityID) IsNil() bool   { return id <= 0 }

func parseID(s, label string) (int64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	return id, nil
}
