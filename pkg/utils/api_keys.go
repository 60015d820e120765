package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func GenerateRandomKey(length int) (string, error) {
	return gonanoid.New(length)
}
