package provisioning

import "errors"

var (
	ErrInvalidRequest     = errors.New("provisioning: invalid request")
	ErrSubdomainTaken     = errors.New("provisioning: subdomain already taken")
	ErrLockTimeout        = errors.New("provisioning: timed out waiting for subdomain lock")
	ErrProvisioningFailed = errors.New("provisioning: failed")
	ErrTenantNotFound     = errors.New("provisioning: tenant not found")
	ErrInvalidTransition  = errors.New("provisioning: status change not allowed")
)

// Outcome labels for metrics and logs.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeConflict    = "conflict"
	OutcomeLockTimeout = "lock_timeout"
	OutcomeFailed      = "failed"
)

// OutcomeOf maps a Provision error to its outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrInvalidRequest):
		return OutcomeInvalid
	case errors.Is(err, ErrSubdomainTaken):
		return OutcomeConflict
	case errors.Is(err, ErrLockTimeout):
		return OutcomeLockTimeout
	default:
		return OutcomeFailed
	}
}
