package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/storekit/handler"
	"github.com/dmitrymomot/storekit/pkg/provisioning"
	"github.com/dmitrymomot/storekit/pkg/sqlguard"
	"github.com/dmitrymomot/storekit/pkg/tenant"
	"github.com/dmitrymomot/storekit/pkg/tenantdb"
)

var (
	errScopeUnavailable   = handler.NewHTTPError(http.StatusServiceUnavailable, "scope_unavailable")
	errTenantContext      = handler.NewHTTPError(http.StatusForbidden, tenant.ErrorCode)
	errSubdomainTaken     = handler.NewHTTPError(http.StatusConflict, "subdomain_taken")
	errProvisioningBusy   = handler.NewHTTPError(http.StatusServiceUnavailable, "provisioning_busy")
	errProvisioningFailed = handler.NewHTTPError(http.StatusInternalServerError, "provisioning_failed")
	errTenantNotFound     = handler.NewHTTPError(http.StatusNotFound, "tenant_not_found")
	errInvalidTransition  = handler.NewHTTPError(http.StatusConflict, "invalid_status_transition")
	errInvalidTenantID    = handler.NewHTTPError(http.StatusBadRequest, "invalid_tenant_id")
)

// mapError translates domain errors into client-facing keys. Order matters:
// a validator rejection surfaced through a scoped connection must never be
// reported as anything but internal_error.
func mapError(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, sqlguard.ErrRejected):
		return handler.ErrInternal, true
	case errors.Is(err, tenantdb.ErrUnavailable):
		return errScopeUnavailable, true
	case errors.Is(err, tenant.ErrNoTenantInContext):
		return errTenantContext, true
	case errors.Is(err, provisioning.ErrInvalidRequest):
		return handler.ErrValidation, true
	case errors.Is(err, provisioning.ErrSubdomainTaken):
		return errSubdomainTaken, true
	case errors.Is(err, provisioning.ErrLockTimeout):
		return errProvisioningBusy, true
	case errors.Is(err, provisioning.ErrTenantNotFound):
		return errTenantNotFound, true
	case errors.Is(err, provisioning.ErrInvalidTransition):
		return errInvalidTransition, true
	case errors.Is(err, provisioning.ErrProvisioningFailed):
		return errProvisioningFailed, true
	}
	return handler.HTTPError{}, false
}
