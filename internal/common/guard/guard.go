package guard

import commonerrors "github.com/HarryOMalley/eagle-bank/internal/common/errors"

// Authorize is the ownership predicate every resource operation consults:
// the authenticated subject either is the owner or it is not. It must run
// after existence has been confirmed and before any mutation, so that a
// non-owner sees Forbidden rather than NotFound for a live resource.
func Authorize(requesterID, ownerID string) error {
	if requesterID == "" || requesterID != ownerID {
		return commonerrors.ErrForbidden
	}
	return nil
}
