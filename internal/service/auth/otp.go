package auth

import (
	"encoding/base32"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const defaultOTPPeriod = 300 * time.Second

// Time based one-time code generator over a shared secret
// Codes are scoped per user, so two users never share a code in one window
// Codes are valid for one period, plus one period of clock skew either way
type otpGenerator struct {
	secret string
	period uint
}

func newOTPGenerator(secret string, period time.Duration) *otpGenerator {
	if period == 0 {
		period = defaultOTPPeriod
	}

	return &otpGenerator{
		secret: secret,
		period: uint(period.Seconds()),
	}
}

func (g *otpGenerator) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    g.period,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// totp wants the shared secret base32 encoded
func (g *otpGenerator) keyFor(userID uuid.UUID) string {
	return base32.StdEncoding.EncodeToString([]byte(g.secret + ":" + userID.String()))
}

func (g *otpGenerator) Generate(userID uuid.UUID, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(g.keyFor(userID), at, g.opts())
}

func (g *otpGenerator) Validate(userID uuid.UUID, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, g.keyFor(userID), at, g.opts())
	return ok && err == nil
}
