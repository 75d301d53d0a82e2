package domain_test

import (
	"testing"

	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "abc", want: "abc"},
		{in: "  AbC12 ", want: "abc12"},
		{in: "\tXYZ\n", want: "xyz"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.NormalizeCode(tt.in), "code %q", tt.in)
	}
}

func TestUserSession(t *testing.T) {
	s := domain.NewUserSession(" Cli01 ", "Maria")

	assert.Equal(t, "cli01", s.Code)
	assert.Equal(t, "CLI01", s.DisplayCode())
	assert.Equal(t, "Maria", s.DisplayName)
}
