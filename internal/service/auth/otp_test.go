package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_OTPGenerator(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("generate and validate roundtrip", func(t *testing.T) {
		g := newOTPGenerator("otp-secret", 300*time.Second)

		code, err := g.Generate(userID, now)
		require.NoError(t, err)
		require.Len(t, code, 6, "code should be six digits")

		require.True(t, g.Validate(userID, code, now), "code should be valid in its window")
	})

	t.Run("code valid within skew window", func(t *testing.T) {
		g := newOTPGenerator("otp-secret", 300*time.Second)

		code, err := g.Generate(userID, now)
		require.NoError(t, err)

		require.True(t, g.Validate(userID, code, now.Add(299*time.Second)), "code should survive within one period")
	})

	t.Run("code expires outside window", func(t *testing.T) {
		g := newOTPGenerator("otp-secret", 300*time.Second)

		code, err := g.Generate(userID, now)
		require.NoError(t, err)

		require.False(t, g.Validate(userID, code, now.Add(2*time.Hour)), "code should not be valid hours later")
	})

	t.Run("different secrets disagree", func(t *testing.T) {
		g1 := newOTPGenerator("otp-secret", 300*time.Second)
		g2 := newOTPGenerator("other-secret", 300*time.Second)

		code, err := g1.Generate(userID, now)
		require.NoError(t, err)

		require.False(t, g2.Validate(userID, code, now), "code from one secret should not validate against another")
	})

	t.Run("codes are scoped per user", func(t *testing.T) {
		g := newOTPGenerator("otp-secret", 300*time.Second)

		code, err := g.Generate(userID, now)
		require.NoError(t, err)

		require.False(t, g.Validate(uuid.New(), code, now), "one user's code should not validate for another")
	})

	t.Run("wrong code rejected", func(t *testing.T) {
		g := newOTPGenerator("otp-secret", 300*time.Second)

		code, err := g.Generate(userID, now)
		require.NoError(t, err)

		// Flip the last digit to get a guaranteed wrong code
		wrong := code[:5] + string('0'+(code[5]-'0'+1)%10)
		require.False(t, g.Validate(userID, wrong, now))
		require.False(t, g.Validate(userID, "not-a-code", now))
	})

	t.Run("zero period defaults to 300s", func(t *testing.T) {
		g := newOTPGenerator("otp-secret", 0)
		require.Equal(t, uint(300), g.period)
	})
}
