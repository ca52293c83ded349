package utils

import "math/rand"

const referenceCodeLength = 8
const letterBytes = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateUniqueReference draws codes until taken reports one as free.
func GenerateUniqueReference(taken func(code string) (bool, error)) (string, error) {
	for {
		b := make([]byte, referenceCodeLength)
		for i := range b {
			b[i] = letterBytes[rand.Intn(len(letterBytes))]
		}
		code := string(b)

		exists, err := taken(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}
