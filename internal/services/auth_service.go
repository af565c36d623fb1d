package services

import (
	"fmt"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/wpq-drafts/internal/config"
	"github.com/localnerve/wpq-drafts/internal/utils"
	"github.com/sirupsen/logrus"
)

// SessionUser is the part of an Authorizer user the service relies on.
// Roles holds the roles the session was validated for.
type SessionUser struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles,omitempty"`
}

// SessionValidator checks a session cookie against a set of roles.
type SessionValidator interface {
	ValidateSession(cookie string, roles []string) (*SessionUser, error)
}

// Authorizer validates sessions with the Authorizer service. The client is
// created lazily on first use, because its redirect URL comes from the
// first request.
type Authorizer struct {
	cfg *config.Config
	log logrus.FieldLogger

	mu          sync.Mutex
	client      *authorizer.AuthorizerClient
	redirectURL string
}

// NewAuthorizer creates an unconnected Authorizer.
func NewAuthorizer(cfg *config.Config, log logrus.FieldLogger) *Authorizer {
	return &Authorizer{cfg: cfg, log: log}
}

// IsInitialized reports whether the client has been created.
func (a *Authorizer) IsInitialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client != nil
}

// Init creates the client once. Later calls are no-ops; a failed attempt
// is retried on the next call.
func (a *Authorizer) Init(requestProtocol, requestHost string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return nil
	}

	// Ping the Authorizer service first
	if err := utils.PingAuthorizer(a.cfg.AuthzURL); err != nil {
		return fmt.Errorf("authorizer ping failed: %w", err)
	}

	redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
	a.log.WithFields(logrus.Fields{
		"authorizer_url": a.cfg.AuthzURL,
		"client_id":      a.cfg.AuthzClientID,
		"redirect_url":   redirectURL,
	}).Info("Initializing Authorizer")

	client, err := authorizer.NewAuthorizerClient(a.cfg.AuthzClientID, a.cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create authorizer client: %w", err)
	}
	a.client = client
	a.redirectURL = redirectURL
	return nil
}

// ValidateSession validates a session cookie for roles.
func (a *Authorizer) ValidateSession(cookie string, roles []string) (*SessionUser, error) {
	a.mu.Lock()
	client := a.client
	a.mu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	// Convert roles to []*string
	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return nil, fmt.Errorf("session is not valid")
	}

	return &SessionUser{
		ID:    res.User.ID,
		Roles: roles,
	}, nil
}
