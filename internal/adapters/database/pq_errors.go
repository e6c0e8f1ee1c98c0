package database

import (
	"errors"

	"github.com/lib/pq"
)

func asPqError(err error, target **pq.Error) bool {
	return errors.As(err, target)
}
