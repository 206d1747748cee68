// Package theme tracks a profile's light/dark/system preference, resolves
// "system" against an OS-level signal and keeps a document marker in sync
// with the effective theme.
package theme

import (
	"strconv"
	"strings"

	apperrors "expensely/internal/errors"
)

// Preference is the persisted choice.
type Preference string

const (
	Light  Preference = "light"
	Dark   Preference = "dark"
	System Preference = "system"
)

// Default is used on first use and whenever the stored value is unusable.
const Default = Light

// Effective is the concrete theme applied to the display.
type Effective string

const (
	EffectiveLight Effective = "light"
	EffectiveDark  Effective = "dark"
)

// DarkClass is the document marker present while the effective theme is dark.
const DarkClass = "dark"

// Preferences lists every valid preference in toggle order.
var Preferences = []Preference{Light, Dark, System}

// Valid reports whether p is one of the enumerated preferences.
func (p Preference) Valid() bool {
	switch p {
	case Light, Dark, System:
		return true
	}
	return false
}

// Next returns the successor in the light -> dark -> system cycle.
func (p Preference) Next() Preference {
	switch p {
	case Light:
		return Dark
	case Dark:
		return System
	default:
		return Light
	}
}

// ParsePreference validates s against the enumeration.
func ParsePreference(s string) (Preference, error) {
	p := Preference(s)
	if !p.Valid() {
		return "", apperrors.ErrInvalidTheme
	}
	return p, nil
}

// Resolve maps a preference to the effective theme given the OS signal.
func Resolve(p Preference, systemDark bool) Effective {
	switch p {
	case Dark:
		return EffectiveDark
	case System:
		if systemDark {
			return EffectiveDark
		}
		return EffectiveLight
	default:
		return EffectiveLight
	}
}

// ParseClientHint interprets a Sec-CH-Prefers-Color-Scheme header value.
// ok is false when the header is absent or unrecognised.
func ParseClientHint(v string) (dark bool, ok bool) {
	switch v {
	case "dark", `"dark"`:
		return true, true
	case "light", `"light"`:
		return false, true
	}
	return false, false
}

// ParseColorFGBG interprets the COLORFGBG variable set by many terminals,
// e.g. "15;0". The last field is the background palette index; the
// low-intensity colours other than white read as dark.
func ParseColorFGBG(v string) (dark bool, ok bool) {
	fields := strings.Split(v, ";")
	bg, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || bg < 0 {
		return false, false
	}
	return bg < 7 || bg == 8, true
}
