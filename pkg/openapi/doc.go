// Package openapi loads OpenAPI documents, extracts operations with
// kin-openapi and builds form models from their request bodies. Field
// metadata understood by the binder (update policy, widget, sanitising,
// standalone) is read from x-formbind extensions.
package openapi
