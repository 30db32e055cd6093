package repository

import "errors"

// ErrNotFound is the repository-level sentinel for "no rows". The service
// layer translates it into the domain-level not-found error so business
// logic never touches sql.ErrNoRows or any other driver detail.
var ErrNotFound = errors.New("repository: not found")
