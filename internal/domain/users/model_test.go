package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestVerificationCodeValid(t *testing.T) {
	u := &User{}
	u.IssueVerificationCode("123456", t0, 30*time.Minute)

	tests := []struct {
		name string
		code string
		now  time.Time
		want bool
	}{
		{"correct code before expiry", "123456", t0.Add(29 * time.Minute), true},
		{"correct code at expiry", "123456", t0.Add(30 * time.Minute), false},
		{"correct code after expiry", "123456", t0.Add(31 * time.Minute), false},
		{"wrong code before expiry", "000000", t0.Add(time.Minute), false},
		{"wrong code after expiry", "000000", t0.Add(time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.VerificationCodeValid(tt.code, tt.now))
		})
	}
}

func TestVerificationCodeValid_NoCode(t *testing.T) {
	assert.False(t, (&User{}).VerificationCodeValid("", t0))
}

func TestMarkVerified_ClearsCode(t *testing.T) {
	u := &User{}
	u.IssueVerificationCode("123456", t0, time.Minute)
	u.MarkVerified()

	assert.True(t, u.IsVerified)
	assert.Nil(t, u.VerificationCode)
	assert.Nil(t, u.VerificationExpiry)
	assert.False(t, u.VerificationCodeValid("123456", t0))
}

func TestResetCodeValid(t *testing.T) {
	u := &User{}
	u.IssueResetCode("654321", t0)
	ttl := 15 * time.Minute

	tests := []struct {
		name string
		code string
		now  time.Time
		want bool
	}{
		{"fresh", "654321", t0.Add(time.Minute), true},
		{"fourteen minutes", "654321", t0.Add(14 * time.Minute), true},
		{"exactly fifteen minutes", "654321", t0.Add(15 * time.Minute), true},
		{"past fifteen minutes", "654321", t0.Add(15*time.Minute + time.Second), false},
		{"wrong code", "111111", t0.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.ResetCodeValid(tt.code, tt.now, ttl))
		})
	}
}

func TestClearResetCode(t *testing.T) {
	u := &User{}
	u.IssueResetCode("654321", t0)
	u.ClearResetCode()

	assert.Nil(t, u.ResetCode)
	assert.Nil(t, u.ResetCodeTimestamp)
	assert.False(t, u.ResetCodeValid("654321", t0, time.Hour))
}

func TestRandomCodes(t *testing.T) {
	g := RandomCodes()
	for i := 0; i < 50; i++ {
		code, err := g.Generate()
		assert.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
