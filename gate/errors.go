package gate

import "errors"

var (
	// ErrUnauthorized means nobody is signed in, or the account could not be
	// looked up.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the signed-in account may not do this: its profile
	// lacks the grant or the record belongs to another client.
	ErrForbidden = errors.New("forbidden")

	// ErrNoProfile is reported by the resolver path for accounts without a
	// profile. Authorize folds it into ErrForbidden.
	ErrNoProfile = errors.New("user has no profile")
)
