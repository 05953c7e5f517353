package plugin

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/hashicorp/go-hclog"
)

// loginAction is the Casbin action checked for every allowed verification.
const loginAction = "login"

// Authorizer performs Casbin-based authorization of logins after the
// endpoint has accepted the credentials. It decides who may log in, not
// whether the password was right.
type Authorizer struct {
	enforcer *casbin.Enforcer
	logger   hclog.Logger
}

// NewAuthorizer creates a new Authorizer with the given Casbin model and policy files.
// Returns nil if either path is empty (authorization disabled).
func NewAuthorizer(modelPath, policyPath string, logger hclog.Logger) (*Authorizer, error) {
	if modelPath == "" || policyPath == "" {
		return nil, nil //nolint:nilnil
	}

	enforcer, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, fmt.Errorf("creating casbin enforcer: %w", err)
	}

	return &Authorizer{
		enforcer: enforcer,
		logger:   logger,
	}, nil
}

// Authorize checks whether the given user may log in. Unlike credential
// verification, enforcement errors fail closed: an allowed login must come
// from a readable policy. A nil Authorizer allows everyone.
func (a *Authorizer) Authorize(username string) (bool, error) {
	if a == nil || a.enforcer == nil {
		return true, nil
	}

	allowed, err := a.enforcer.Enforce(username, loginAction)
	if err != nil {
		return false, fmt.Errorf("casbin enforce error: %w", err)
	}
	if !allowed {
		a.logger.Debug("Authorization denied", "user", username, "action", loginAction)
	}

	return allowed, nil
}

// ReloadPolicy reloads the Casbin policy from the backing store.
func (a *Authorizer) ReloadPolicy() error {
	if a == nil || a.enforcer == nil {
		return nil
	}
	return a.enforcer.LoadPolicy()
}
