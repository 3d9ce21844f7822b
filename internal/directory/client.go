package directory

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Session owns one authenticated connection. Callers must Close it on every
// path; after any operation error the session is not reusable and a fresh
// Authenticate is required.
type Session struct {
	conn   *ldap.Conn
	config Config
	logger *slog.Logger
}

// Authenticate opens a connection, upgrades it to TLS before any credential
// is sent, and binds as the given principal. Bare logins are qualified with
// the deployment domain first.
func Authenticate(cfg Config, login, password string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	qualified := NormalizeLogin(login, cfg.Domain)
	if qualified == "" || password == "" {
		return nil, fmt.Errorf("%w: empty login or password", ErrInvalidCredentials)
	}

	conn, err := ldap.DialURL(cfg.ServerURL)
	if err != nil {
		logger.Error("directory dial failed", "server", cfg.ServerURL, "error", err)
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, cfg.ServerURL, err)
	}
	if cfg.BindTimeout > 0 {
		conn.SetTimeout(cfg.BindTimeout)
	}

	if cfg.StartTLS && !strings.HasPrefix(strings.ToLower(cfg.ServerURL), "ldaps://") {
		tlsCfg := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			logger.Error("directory StartTLS failed", "server", cfg.ServerURL, "error", err)
			return nil, fmt.Errorf("%w: start tls: %v", ErrUnavailable, err)
		}
	}

	if err := conn.Bind(qualified, password); err != nil {
		conn.Close()
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			logger.Warn("directory bind rejected", "login", qualified)
			return nil, fmt.Errorf("%w: bind as %s", ErrInvalidCredentials, qualified)
		}
		logger.Error("directory bind failed", "login", qualified, "error", err)
		return nil, fmt.Errorf("%w: bind: %v", ErrUnavailable, err)
	}

	logger.Debug("directory session opened", "login", qualified)
	return &Session{conn: conn, config: cfg, logger: logger}, nil
}

// Close unbinds and releases the connection. Safe to call more than once.
func (s *Session) Close() {
	if s == nil || s.conn == nil {
		return
	}
	s.conn.Close()
	s.conn = nil
}

// SearchAll returns every person-class entry under the base DN, normalized
// into fixed-shape records. The attribute projection keeps payloads small;
// unrequested attributes come back empty.
func (s *Session) SearchAll(attributes []string) ([]Entry, error) {
	return s.search(personFilter, attributes)
}

// SearchByLogin scopes the person search to one sAMAccountName. Zero or one
// entry in practice; callers take the first.
func (s *Session) SearchByLogin(login string, attributes []string) ([]Entry, error) {
	filter := fmt.Sprintf("(&%s(sAMAccountName=%s))", personFilter, ldap.EscapeFilter(ShortLogin(login)))
	return s.search(filter, attributes)
}

func (s *Session) search(filter string, attributes []string) ([]Entry, error) {
	req := ldap.NewSearchRequest(
		s.config.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter,
		attributes,
		nil,
	)

	res, err := s.conn.Search(req)
	if err != nil {
		s.logger.Error("directory search failed", "filter", filter, "error", err)
		return nil, fmt.Errorf("%w: search: %v", ErrUnavailable, err)
	}

	entries := make([]Entry, 0, len(res.Entries))
	for _, raw := range res.Entries {
		entries = append(entries, normalizeEntry(raw))
	}
	s.logger.Debug("directory search complete", "filter", filter, "entries", len(entries))
	return entries, nil
}

// normalizeEntry is the single place raw protocol entries become Entry
// values; whitespace-only attribute values are treated as absent.
func normalizeEntry(raw *ldap.Entry) Entry {
	get := func(name string) string {
		return strings.TrimSpace(raw.GetAttributeValue(name))
	}
	return Entry{
		DN:                raw.DN,
		SAMAccountName:    get("sAMAccountName"),
		UserPrincipalName: get("userPrincipalName"),
		DisplayName:       get("displayName"),
		Mail:              get("mail"),
		Telephone:         get("telephoneNumber"),
		Title:             get("title"),
	}
}

// Move relocates the entry at currentDN under OU=newOU within the configured
// container base. A DN without a CN= prefix fails before any network call.
func (s *Session) Move(currentDN, newOU string) error {
	rdn, err := RDN(currentDN)
	if err != nil {
		return err
	}

	req := ldap.NewModifyDNRequest(currentDN, rdn, true, NewSuperior(newOU, s.config.ContainerBase))
	if err := s.conn.ModifyDN(req); err != nil {
		s.logger.Error("directory move failed", "dn", currentDN, "new_ou", newOU, "error", err)
		return fmt.Errorf("%w: modify dn: %v", ErrUnavailable, err)
	}

	s.logger.Info("directory entry moved", "dn", currentDN, "new_ou", newOU)
	return nil
}

// CreatePerson adds a user entry under the given OU (or the container base
// when no OU is chosen). The account is created without a password; follow
// with SetPassword.
func (s *Session) CreatePerson(attrs PersonAttributes) (string, error) {
	login := ShortLogin(attrs.Login)
	if login == "" {
		return "", fmt.Errorf("%w: empty login", ErrMalformedDN)
	}

	cn := strings.TrimSpace(attrs.DisplayName)
	if cn == "" {
		cn = strings.TrimSpace(attrs.GivenName + " " + attrs.Surname)
	}
	if cn == "" {
		cn = login
	}

	parent := s.config.ContainerBase
	if attrs.OU != "" {
		parent = NewSuperior(attrs.OU, s.config.ContainerBase)
	}
	dn := fmt.Sprintf("CN=%s,%s", cn, parent)

	mail := strings.TrimSpace(attrs.Mail)
	if mail == "" {
		mail = NormalizeLogin(login, s.config.Domain)
	}

	req := ldap.NewAddRequest(dn, nil)
	req.Attribute("objectClass", []string{"top", "person", "organizationalPerson", "user"})
	req.Attribute("cn", []string{cn})
	req.Attribute("sAMAccountName", []string{login})
	req.Attribute("userPrincipalName", []string{NormalizeLogin(login, s.config.Domain)})
	req.Attribute("displayName", []string{cn})
	if attrs.GivenName != "" {
		req.Attribute("givenName", []string{attrs.GivenName})
	}
	if attrs.Surname != "" {
		req.Attribute("sn", []string{attrs.Surname})
	}
	req.Attribute("mail", []string{mail})
	if attrs.Telephone != "" {
		req.Attribute("telephoneNumber", []string{attrs.Telephone})
	}

	if err := s.conn.Add(req); err != nil {
		s.logger.Error("directory create failed", "dn", dn, "error", err)
		return "", fmt.Errorf("%w: add %s: %v", ErrUnavailable, dn, err)
	}

	s.logger.Info("directory entry created", "dn", dn, "login", login)
	return dn, nil
}

// SetPassword replaces the entry's password using the protocol-mandated
// quoted UTF-16LE encoding.
func (s *Session) SetPassword(dn, plaintext string) error {
	req := ldap.NewModifyRequest(dn, nil)
	req.Replace("unicodePwd", []string{string(EncodePassword(plaintext))})

	if err := s.conn.Modify(req); err != nil {
		s.logger.Error("directory password change failed", "dn", dn, "error", err)
		return fmt.Errorf("%w: set password on %s: %v", ErrUnavailable, dn, err)
	}

	s.logger.Info("directory password changed", "dn", dn)
	return nil
}

// Delete removes the entry at dn.
func (s *Session) Delete(dn string) error {
	req := ldap.NewDelRequest(dn, nil)
	if err := s.conn.Del(req); err != nil {
		s.logger.Error("directory delete failed", "dn", dn, "error", err)
		return fmt.Errorf("%w: delete %s: %v", ErrUnavailable, dn, err)
	}

	s.logger.Info("directory entry deleted", "dn", dn)
	return nil
}
