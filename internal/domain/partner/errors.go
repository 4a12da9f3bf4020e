package partner

import "errors"

var (
	// ErrApplicationNotFound is returned when the application does not exist.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrPartnerNotFound is returned when the partner does not exist.
	ErrPartnerNotFound = errors.New("partner not found")

	// ErrApplicationRejected is returned when approval is attempted against
	// a rejected application.
	ErrApplicationRejected = errors.New("application is rejected")

	// ErrIdentityConflict is returned when a partner is already linked to a
	// different external identity.
	ErrIdentityConflict = errors.New("partner linked to a different identity")
)
