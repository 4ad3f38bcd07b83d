package users

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const CodeLength = 6

// CodeGenerator produces the numeric one-time codes used for verification and password reset.
type CodeGenerator interface {
	Generate() (string, error)
}

type randomCodes struct{}

// RandomCodes returns a CodeGenerator backed by crypto/rand.
func RandomCodes() CodeGenerator {
	return randomCodes{}
}

func (randomCodes) Generate() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// FixedCode always returns the same code. Useful in tests and local demos.
type FixedCode string

func (c FixedCode) Generate() (string, error) {
	return string(c), nil
}
