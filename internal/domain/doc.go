// Package domain defines the data models and contracts shared across the
// ceremony client. It contains plain types (wire/state) and interfaces only.
package domain
