package order

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Checkout error taxonomy. Validation errors block progression inline and
// never reach the persistence layer; the remaining categories classify
// persistence failures for distinct user-facing messages.
var (
	ErrNotAuthenticated = errors.New("order: user not authenticated")
	ErrAccountBlocked   = errors.New("order: account is not allowed to checkout")
	ErrEmptyCart        = errors.New("order: cart is empty")
	ErrNotFound         = errors.New("order: not found")
	ErrBadTransition    = errors.New("order: illegal status transition")

	ErrPermissionDenied = errors.New("order: store rejected the write")
	ErrUnavailable      = errors.New("order: store temporarily unavailable")
	ErrNetwork          = errors.New("order: network failure")
)

const codeUnauthorized = 13

// classifyStoreError maps a raw persistence error onto the taxonomy. The
// original error is kept in the chain for diagnostics but callers surface
// only the category.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	// not-found is already part of the taxonomy, pass it through
	if errors.Is(err, ErrNotFound) {
		return err
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeUnauthorized {
		return errors.Join(ErrPermissionDenied, err)
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && srvErr.HasErrorCode(codeUnauthorized) {
		return errors.Join(ErrPermissionDenied, err)
	}

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return errors.Join(ErrUnavailable, err)
	}

	return errors.Join(ErrNetwork, err)
}
