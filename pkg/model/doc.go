// Package model defines the publishing template document exchanged with the
// templates API. Types live in internal/model and are re-exported here so the
// JSON/YAML wire names (fieldName, fieldLabel, extractionInstructions, ...)
// and enum values (extracted, summary, date_today, static; none, bold, ...)
// stay in one place. A Template's CustomFields slice is its render order and
// every Field.DisplayOrder is expected to equal its index; Renumber and
// SortByDisplayOrder restore that invariant after edits or when loading
// documents persisted by older clients.
package model
