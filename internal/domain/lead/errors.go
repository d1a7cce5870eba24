package lead

import "errors"

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrDuplicateKey = errors.New("duplicate unique key")
)
