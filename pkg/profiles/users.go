package profiles

import (
	"os/user"
	"strconv"
)

// User is a candidate account whose state profiles may need scanning.
type User struct {
	Name string
	Home string
}

// UserEnumerator resolves candidate user identities in scope. It exists
// so the all-profiles scan does not bake the system account database
// into the retention logic: tests and callers on unusual platforms can
// supply an explicit list instead.
type UserEnumerator interface {
	// LookupUID resolves a UID to a user, reporting whether the
	// account exists.
	LookupUID(uid uint32) (User, bool)
}

// PasswdUsers resolves users through the system account database.
type PasswdUsers struct{}

func (PasswdUsers) LookupUID(uid uint32) (User, bool) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return User{}, false
	}
	return User{Name: u.Username, Home: u.HomeDir}, true
}

// StaticUsers is a fixed UID-to-user mapping, for tests and for
// callers that already know the accounts in scope.
type StaticUsers map[uint32]User

func (s StaticUsers) LookupUID(uid uint32) (User, bool) {
	u, ok := s[uid]
	return u, ok
}
