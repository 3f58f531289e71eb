package policy

import (
	"context"

	"github.com/diewo77/bespoke-tuition/gate"
)

// AccountHolder is a record reachable from a customer login. A client is
// held by its registered user and an invoice by its client's user; 0 means
// no login is linked.
type AccountHolder interface {
	AccountUserID() uint
}

// AccountPolicy lets a customer reach only the records linked to their own
// login.
type AccountPolicy struct{}

// Can allows a nil resource (list/create are settled by the profile) and a
// record whose linked login is userID. Anything else is refused.
func (AccountPolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	held, ok := resource.(AccountHolder)
	if !ok {
		return false
	}
	linked := held.AccountUserID()
	return linked != 0 && linked == userID
}

// AdminOverride lets office admins through and sends everyone else to
// customer.
func AdminOverride(customer gate.Policy[uint], isAdmin func(ctx context.Context, userID uint) bool) gate.PolicyFunc[uint] {
	return func(ctx context.Context, userID uint, action gate.Action, resource any) bool {
		return isAdmin(ctx, userID) || customer.Can(ctx, userID, action, resource)
	}
}
