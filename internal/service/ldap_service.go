package service

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"ai2sql/internal/pkg/config"
	pkgErrors "ai2sql/pkg/errors"
)

// LDAPUser is what a successful directory bind yields
type LDAPUser struct {
	Email string
	Name  string
}

type LDAPService interface {
	Authenticate(email, password string) (*LDAPUser, error)
}

type ldapService struct {
	cfg *config.LDAPConfig
}

func NewLDAPService(cfg *config.LDAPConfig) LDAPService {
	return &ldapService{
		cfg: cfg,
	}
}

func (s *ldapService) Authenticate(email, password string) (*LDAPUser, error) {
	if !s.cfg.Enabled {
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "ldap authentication is disabled")
	}
	// an empty password would be an anonymous bind
	if password == "" {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	userDN, attributes, err := s.searchUser(conn, email)
	if err != nil {
		return nil, err
	}

	if err := conn.Bind(userDN, password); err != nil {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	user := &LDAPUser{
		Email: strings.ToLower(strings.TrimSpace(attributes[s.cfg.Attributes.Email])),
		Name:  attributes[s.cfg.Attributes.DisplayName],
	}
	if user.Email == "" {
		user.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if user.Name == "" {
		user.Name = user.Email
	}

	return user, nil
}

func (s *ldapService) connect() (*ldap.Conn, error) {
	var conn *ldap.Conn
	var err error

	address := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	if s.cfg.UseSSL {
		conn, err = ldap.DialTLS("tcp", address, nil)
	} else {
		conn, err = ldap.Dial("tcp", address)
	}

	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeAuthError, "ldap connection failed", err)
	}

	// service account bind
	if err := conn.Bind(s.cfg.BindDN, s.cfg.BindPassword); err != nil {
		conn.Close()
		return nil, pkgErrors.Wrap(pkgErrors.CodeAuthError, "ldap bind failed", err)
	}

	return conn, nil
}

func (s *ldapService) searchUser(conn *ldap.Conn, email string) (string, map[string]string, error) {
	filter := fmt.Sprintf(s.cfg.UserFilter, ldap.EscapeFilter(strings.TrimSpace(email)))

	searchRequest := ldap.NewSearchRequest(
		s.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		0,
		false,
		filter,
		[]string{s.cfg.Attributes.Email, s.cfg.Attributes.DisplayName},
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return "", nil, pkgErrors.Wrap(pkgErrors.CodeAuthError, "ldap search failed", err)
	}

	if len(result.Entries) == 0 {
		return "", nil, pkgErrors.ErrInvalidCredentials
	}

	if len(result.Entries) > 1 {
		return "", nil, pkgErrors.New(pkgErrors.CodeAuthError, "multiple ldap entries match")
	}

	entry := result.Entries[0]
	attributes := make(map[string]string)
	attributes[s.cfg.Attributes.Email] = entry.GetAttributeValue(s.cfg.Attributes.Email)
	attributes[s.cfg.Attributes.DisplayName] = entry.GetAttributeValue(s.cfg.Attributes.DisplayName)

	return entry.DN, attributes, nil
}
