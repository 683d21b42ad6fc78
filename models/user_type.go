package models

type UserType string

const (
	UserRegular UserType = "regular"
	UserPro     UserType = "pro"
)

var UserTypes = []UserType{UserRegular, UserPro}

// legacyRegular is how older export files spell the regular user type.
const legacyRegular = "обычный"

func LookupUserType(s string) (UserType, bool) {
	switch s {
	case string(UserRegular), legacyRegular:
		return UserRegular, true
	case string(UserPro):
		return UserPro, true
	}
	return "", false
}

func ParseUserType(s string) (UserType, error) {
	t, ok := LookupUserType(s)
	if !ok {
		return "", unknown("user type", s)
	}
	return t, nil
}
