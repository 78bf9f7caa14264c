// Package model defines the typed form description the binder consumes:
// fields with their kinds, defaults, enum options and validation rules.
// Validation rules use canonical identifiers (required, min/max,
// minLength/maxLength, pattern, email) with string parameters so the same
// description can be loaded from OpenAPI documents or configuration files.
// Field metadata carries binding hints such as the update policy ("updateOn")
// and the accessor widget ("widget").
package model
