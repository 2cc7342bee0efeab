package card

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/zokasta/bank/pkg/config"
	"github.com/zokasta/bank/pkg/domain/card"
	"github.com/zokasta/bank/pkg/repository"
)

// Generator produces unique, Luhn-valid card numbers for both debit and
// credit instruments, plus the CVV and expiration values issued with them.
// Uniqueness is checked against every existing card number in the bank
// through the CardNumberIndex.
type Generator struct {
	index  repository.CardNumberIndex
	cfg    *config.Ledger
	logger *slog.Logger
}

// NewGenerator creates a Generator with the given retry budget and prefix
// configuration.
func NewGenerator(cfg *config.Ledger, index repository.CardNumberIndex, logger *slog.Logger) *Generator {
	return &Generator{index: index, cfg: cfg, logger: logger}
}

// Generate returns a fresh card number of the configured length, starting
// with the configured prefix, whose final digit satisfies the Luhn
// checksum. It redraws on collision and fails with ErrCardSpaceExhausted
// once the attempt budget is spent, rather than looping forever.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.cfg.CardMaxAttempts; attempt++ {
		number := randomLuhn(g.cfg.CardPrefix, g.cfg.CardLength)
		exists, err := g.index.Exists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("card number uniqueness check: %w", err)
		}
		if !exists {
			return number, nil
		}
		g.logger.Debug("card number collision, redrawing", "attempt", attempt+1)
	}
	return "", card.ErrCardSpaceExhausted
}

// CVV returns a random 3-digit verification value.
func (g *Generator) CVV() string {
	return fmt.Sprintf("%03d", rand.Intn(1000))
}

// Expiration returns the MM/YY expiration three years from now.
func (g *Generator) Expiration(now time.Time) string {
	return now.AddDate(3, 0, 0).Format("01/06")
}

// randomLuhn builds a number of the given length: prefix, random middle
// digits, and a Luhn check digit last.
func randomLuhn(prefix string, length int) string {
	digits := make([]byte, length)
	copy(digits, prefix)
	for i := len(prefix); i < length-1; i++ {
		digits[i] = byte('0' + rand.Intn(10))
	}
	digits[length-1] = checkDigit(digits[:length-1])
	return string(digits)
}

// checkDigit returns the digit that makes partial+digit Luhn-valid.
// The check digit sits rightmost, so doubling starts at the last digit of
// partial and alternates leftward.
func checkDigit(partial []byte) byte {
	sum := 0
	double := true
	for i := len(partial) - 1; i >= 0; i-- {
		d := int(partial[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte('0' + (10-sum%10)%10)
}

// ValidLuhn reports whether a digit string passes the Luhn checksum.
func ValidLuhn(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
