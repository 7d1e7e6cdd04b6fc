package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	identity "github.com/goliatone/go-identity"
)

func validSignup() identity.SignupInput {
	return identity.SignupInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "Secure1!pass",
	}
}

func TestSignupInputValidate(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		assert.NoError(t, validSignup().Validate())
	})

	t.Run("hangul name", func(t *testing.T) {
		in := validSignup()
		in.Name = "홍길동"
		assert.NoError(t, in.Validate())
	})

	t.Run("explicit role", func(t *testing.T) {
		in := validSignup()
		in.Role = identity.RoleAdmin
		assert.NoError(t, in.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*identity.SignupInput)
	}{
		{
			name:   "missing name",
			mutate: func(in *identity.SignupInput) { in.Name = "" },
		},
		{
			name:   "single character name",
			mutate: func(in *identity.SignupInput) { in.Name = "J" },
		},
		{
			name:   "name with digits",
			mutate: func(in *identity.SignupInput) { in.Name = "Jane 2nd" },
		},
		{
			name:   "missing email",
			mutate: func(in *identity.SignupInput) { in.Email = "" },
		},
		{
			name:   "email without domain",
			mutate: func(in *identity.SignupInput) { in.Email = "jane@" },
		},
		{
			name:   "email without tld",
			mutate: func(in *identity.SignupInput) { in.Email = "jane@example" },
		},
		{
			name:   "missing password",
			mutate: func(in *identity.SignupInput) { in.Password = "" },
		},
		{
			name:   "unknown role",
			mutate: func(in *identity.SignupInput) { in.Role = "OWNER" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignup()
			tt.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}

func TestPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "all classes present", password: "Secure1!pass"},
		{name: "minimum length", password: "Aa1!aaaa"},
		{name: "maximum length", password: "Aa1!aaaaaaaaaaaa"},
		{name: "too short", password: "Aa1!aaa", wantErr: true},
		{name: "too long", password: "Aa1!aaaaaaaaaaaaa", wantErr: true},
		{name: "no uppercase", password: "secure1!pass", wantErr: true},
		{name: "no lowercase", password: "SECURE1!PASS", wantErr: true},
		{name: "no digit", password: "Secure!!pass", wantErr: true},
		{name: "no special", password: "Secure11pass", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSignup()
			in.Password = tt.password
			err := in.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSigninInputValidate(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		in := identity.SigninInput{Email: "jane@example.com", Password: "whatever"}
		assert.NoError(t, in.Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		in := identity.SigninInput{Email: "nope", Password: "whatever"}
		assert.Error(t, in.Validate())
	})

	t.Run("missing password", func(t *testing.T) {
		in := identity.SigninInput{Email: "jane@example.com"}
		assert.Error(t, in.Validate())
	})
}

func TestUserUpdateValidate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	t.Run("empty update is valid", func(t *testing.T) {
		assert.NoError(t, identity.UserUpdate{}.Validate())
	})

	t.Run("valid fields", func(t *testing.T) {
		in := identity.UserUpdate{
			Name:  strPtr("Jane Doe"),
			Email: strPtr("jane.doe@example.com"),
		}
		assert.NoError(t, in.Validate())
	})

	t.Run("invalid name", func(t *testing.T) {
		in := identity.UserUpdate{Name: strPtr("J4ne")}
		assert.Error(t, in.Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		in := identity.UserUpdate{Email: strPtr("not-an-email")}
		assert.Error(t, in.Validate())
	})
}
