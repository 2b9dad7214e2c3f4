// Package validator provides small composable input checks.
//
// Rules are built eagerly and evaluated by Apply, which reports every failure
// at once:
//
//	err := validator.Apply(
//	    validator.Required("subdomain", req.Subdomain),
//	    validator.MaxLen("subdomain", req.Subdomain, 63),
//	    validator.ValidEmail("owner_email", req.OwnerEmail),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//	    // render ve.Fields()
//	}
package validator
