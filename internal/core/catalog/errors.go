package catalog

import (
	"fmt"
	"strings"

	"github.com/neilberkman/cpl/internal/core/models"
)

// ShortIDLen is how many id characters are shown when disambiguating
const ShortIDLen = 8

// ShortID truncates an id for display
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// AmbiguousIdentifierError is returned when an id prefix matches more than
// one pattern. Matches holds every colliding record.
type AmbiguousIdentifierError struct {
	Identifier string
	Matches    []models.Pattern
}

func (e *AmbiguousIdentifierError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "identifier %q matches %d patterns:", e.Identifier, len(e.Matches))
	for _, p := range e.Matches {
		fmt.Fprintf(&b, "\n  %s  %s", ShortID(p.ID), p.Name)
	}
	return b.String()
}
