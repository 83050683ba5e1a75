package service

import "hospital-bed-management/pkg/apperr"

// bedClaimAttempts bounds the retry loop around bed claim CAS failures.
// Nothing else in the engine retries automatically.
const bedClaimAttempts = 3

// retryBedClaim runs op up to bedClaimAttempts times while it keeps losing
// the bed-claim CAS, then surfaces the last BedUnavailable to the caller.
func retryBedClaim(op func() error) error {
	var err error
	for i := 0; i < bedClaimAttempts; i++ {
		err = op()
		if !apperr.IsKind(err, apperr.KindBedUnavailable) {
			return err
		}
	}
	return err
}
