// Package calendar provides holiday calendars and business-day arithmetic
// for the jurisdictions the engine supports.
package calendar

import (
	"strings"

	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

// Jurisdiction identifies a regulatory jurisdiction by its ISO-style code.
type Jurisdiction string

const (
	JurisdictionEU Jurisdiction = "EU"
	JurisdictionDE Jurisdiction = "DE"
	JurisdictionFR Jurisdiction = "FR"
	JurisdictionIT Jurisdiction = "IT"
	JurisdictionES Jurisdiction = "ES"
	JurisdictionNL Jurisdiction = "NL"
	JurisdictionUK Jurisdiction = "UK"
	JurisdictionUS Jurisdiction = "US"
)

// supportedJurisdictions is the closed set of codes with a holiday ruleset.
var supportedJurisdictions = map[Jurisdiction]string{
	JurisdictionEU: "European Union (ECB TARGET)",
	JurisdictionDE: "Germany",
	JurisdictionFR: "France",
	JurisdictionIT: "Italy",
	JurisdictionES: "Spain",
	JurisdictionNL: "Netherlands",
	JurisdictionUK: "United Kingdom",
	JurisdictionUS: "United States",
}

// aliases maps ingestion-side spellings onto canonical codes.
var aliases = map[string]Jurisdiction{
	"GB":             JurisdictionUK,
	"EUROPEAN UNION": JurisdictionEU,
	"GERMANY":        JurisdictionDE,
	"FRANCE":         JurisdictionFR,
	"ITALY":          JurisdictionIT,
	"SPAIN":          JurisdictionES,
	"NETHERLANDS":    JurisdictionNL,
	"UNITED KINGDOM": JurisdictionUK,
	"UNITED STATES":  JurisdictionUS,
	"USA":            JurisdictionUS,
}

// ParseJurisdiction normalizes raw into a supported Jurisdiction.  It accepts
// canonical codes in any case plus a handful of full-name aliases.
func ParseJurisdiction(raw string) (Jurisdiction, error) {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	if norm == "" {
		return "", apperrors.InvalidParam("jurisdiction must not be empty")
	}
	if j, ok := aliases[norm]; ok {
		return j, nil
	}
	j := Jurisdiction(norm)
	if _, ok := supportedJurisdictions[j]; ok {
		return j, nil
	}
	return "", apperrors.Newf(apperrors.ErrCodeValidation, "unsupported jurisdiction %q", raw)
}

// IsSupported reports whether j has a holiday ruleset.
func (j Jurisdiction) IsSupported() bool {
	_, ok := supportedJurisdictions[j]
	return ok
}

// DisplayName returns a human-readable name for j, or the raw code when
// unknown.
func (j Jurisdiction) DisplayName() string {
	if name, ok := supportedJurisdictions[j]; ok {
		return name
	}
	return string(j)
}

// SupportedJurisdictions returns every supported code in no particular order.
func SupportedJurisdictions() []Jurisdiction {
	out := make([]Jurisdiction, 0, len(supportedJurisdictions))
	for j := range supportedJurisdictions {
		out = append(out, j)
	}
	return out
}
