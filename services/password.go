package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const passwordLen = 10

// Every generated password draws at least one character from each class.
var passwordClasses = []string{
	"ABCDEFGHJKLMNPQRSTUVWXYZ",
	"abcdefghijkmnopqrstuvwxyz",
	"23456789",
	"!@#$%&*",
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// GenerateSecurePassword returns a random staff password. Do not log the
// result.
func GenerateSecurePassword() (string, error) {
	var all string
	for _, c := range passwordClasses {
		all += c
	}
	out := make([]byte, passwordLen)
	for i := range out {
		set := all
		if i < len(passwordClasses) {
			set = passwordClasses[i]
		}
		j, err := randIndex(len(set))
		if err != nil {
			return "", err
		}
		out[i] = set[j]
	}
	// Fisher-Yates so the guaranteed classes are not always up front.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", fmt.Errorf("shuffle: %w", err)
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}
