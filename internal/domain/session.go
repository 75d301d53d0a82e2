package domain

import "strings"

type UserSession struct {
	Code        string
	DisplayName string
}

func NewUserSession(code, displayName string) UserSession {
	return UserSession{Code: NormalizeCode(code), DisplayName: displayName}
}

// NormalizeCode makes access codes case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func (s UserSession) DisplayCode() string {
	return strings.ToUpper(s.Code)
}
