package repo

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DeleteGuard restricts a user delete to records without the given flags.
type DeleteGuard struct {
	RejectAdmin bool
	RejectOwner bool
}
