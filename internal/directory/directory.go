// Package directory is the Active Directory client used by authentication,
// synchronization and OU transfers. Every operation runs on an explicit
// authenticated Session; sessions are cheap and never shared across requests.
package directory

import (
	"errors"
	"strings"
	"time"
)

const personFilter = "(objectClass=person)"

// SyncAttributes is the projection the sync engine asks for. The entry DN is
// always returned by the server and is not listed here.
var SyncAttributes = []string{"sAMAccountName", "displayName", "title"}

// ProfileAttributes is the projection used when enriching an employee profile.
var ProfileAttributes = []string{"sAMAccountName", "displayName", "mail", "telephoneNumber", "title", "distinguishedName"}

var (
	// ErrInvalidCredentials means the bind was rejected (LDAP result 49).
	ErrInvalidCredentials = errors.New("directory rejected credentials")
	// ErrUnavailable covers dial, TLS and any other protocol-level failure;
	// the caller may retry from Authenticate.
	ErrUnavailable = errors.New("directory unavailable")
	// ErrMalformedDN is a client-side validation failure; no network call was made.
	ErrMalformedDN = errors.New("malformed distinguished name")
	// ErrNotFound means no entry matched the search.
	ErrNotFound = errors.New("entry not found in directory")
)

type Config struct {
	ServerURL          string
	Domain             string
	BaseDN             string
	ContainerBase      string
	StartTLS           bool
	InsecureSkipVerify bool
	BindTimeout        time.Duration
}

// Entry is the fixed-shape record produced from a raw search result. Absent
// attributes are empty strings; downstream code never probes the protocol
// object directly.
type Entry struct {
	DN                string `json:"dn"`
	SAMAccountName    string `json:"sam_account_name"`
	UserPrincipalName string `json:"user_principal_name,omitempty"`
	DisplayName       string `json:"display_name"`
	Mail              string `json:"mail,omitempty"`
	Telephone         string `json:"telephone,omitempty"`
	Title             string `json:"title,omitempty"`
}

// Login returns the lower-cased short login name, or "" when the entry has no
// usable sAMAccountName.
func (e Entry) Login() string {
	return strings.ToLower(strings.TrimSpace(e.SAMAccountName))
}

// OU returns the entry's current organizational unit: the first OU= component
// of its DN, or "" when the entry sits outside any OU (e.g. CN=Users).
func (e Entry) OU() string {
	ou, _ := FirstOU(e.DN)
	return ou
}

// PersonAttributes describes a user to create in the directory.
type PersonAttributes struct {
	Login       string
	GivenName   string
	Surname     string
	DisplayName string
	Mail        string
	Telephone   string
	OU          string
}

// NormalizeLogin qualifies a bare account name with the deployment domain.
// Already-qualified logins pass through unchanged apart from lower-casing.
func NormalizeLogin(login, domain string) string {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return ""
	}
	if strings.Contains(login, "@") {
		return login
	}
	return login + "@" + strings.ToLower(domain)
}

// ShortLogin strips the domain suffix from a qualified login.
func ShortLogin(login string) string {
	login = strings.ToLower(strings.TrimSpace(login))
	if idx := strings.Index(login, "@"); idx != -1 {
		return login[:idx]
	}
	return login
}
