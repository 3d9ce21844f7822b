package directory

import (
	"fmt"
	"strings"
)

// splitComponents splits a DN on commas, honoring backslash escapes inside
// attribute values.
func splitComponents(dn string) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range dn {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == ',':
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, strings.TrimSpace(cur.String()))
	}
	return parts
}

// RDN returns the leading CN= component of a DN. A DN that does not start
// with CN= fails with ErrMalformedDN before any network call is made.
func RDN(dn string) (string, error) {
	parts := splitComponents(dn)
	if len(parts) == 0 || !strings.HasPrefix(strings.ToUpper(parts[0]), "CN=") {
		return "", fmt.Errorf("%w: %q has no CN= prefix", ErrMalformedDN, dn)
	}
	return parts[0], nil
}

// FirstOU returns the first OU= component's value, walking the DN from the
// entry toward the root. ok is false for entries outside any OU.
func FirstOU(dn string) (string, bool) {
	for _, part := range splitComponents(dn) {
		if strings.HasPrefix(strings.ToUpper(part), "OU=") {
			return strings.TrimSpace(part[3:]), true
		}
	}
	return "", false
}

// NewSuperior builds the parent DN for an entry placed in ouName under the
// configured container base.
func NewSuperior(ouName, containerBase string) string {
	return fmt.Sprintf("OU=%s,%s", ouName, containerBase)
}

// DNAfterMove reconstructs the full DN an entry has after being moved to
// ouName. Used for audit records; the directory itself is the authority.
func DNAfterMove(oldDN, ouName, containerBase string) (string, error) {
	rdn, err := RDN(oldDN)
	if err != nil {
		return "", err
	}
	return rdn + "," + NewSuperior(ouName, containerBase), nil
}
