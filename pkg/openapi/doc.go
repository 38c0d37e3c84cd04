// Package openapi exposes the contracts for loading the templates API
// description and validating template documents against it. The
// kin-openapi backed implementations live under internal/openapi; the
// top-level pubtemplate package wires them together.
package openapi
