package gcaccess

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

const (
	pinLength = 4
	pinMin    = 1000
	pinSpan   = 9000
)

// GeneratePin returns a uniformly random PIN in 1000..9999.
func GeneratePin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpan))
	if err != nil {
		return "", fmt.Errorf("reading random pin: %w", err)
	}
	return strconv.FormatInt(n.Int64()+pinMin, 10), nil
}

// WellFormed reports whether pin is exactly four ASCII digits.
func WellFormed(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}
