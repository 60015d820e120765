package service

import (
	"fmt"
	"time"

	"github.com/postqueue/postqueue/internal/apperror"
)

func storageError(err error) error {
	return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
}

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
