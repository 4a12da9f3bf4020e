package license

import "errors"

var (
	// ErrLicenseNotFound is returned when a tenant has no license row.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrAccessDenied is returned when the billing authority resolver
	// denies access to an otherwise present license.
	ErrAccessDenied = errors.New("license access denied")

	// ErrFeatureNotEntitled is returned when a required feature is not in
	// the license's feature set.
	ErrFeatureNotEntitled = errors.New("feature not entitled")
)
