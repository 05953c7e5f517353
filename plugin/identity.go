package plugin

import (
	"fmt"
	"os/user"
)

// LocalIdentity is the account record attached to an allow verdict. It is
// the configured local template account with the username replaced by the
// authenticated remote user, so web-authenticated logins share one set of
// filesystem credentials while keeping their own names.
type LocalIdentity struct {
	// Username is the name the remote user authenticated as.
	Username string
	// LocalName is the template account the identity was copied from.
	LocalName string
	// UID and GID are the template account's numeric IDs, as strings in
	// os/user's format.
	UID string
	GID string
	// HomeDir is the template account's home directory.
	HomeDir string
}

// IdentityResolver maps authenticated usernames onto the configured local
// account.
type IdentityResolver struct {
	localUser string
	lookup    func(string) (*user.User, error)
}

// NewIdentityResolver returns a resolver backed by the system user
// database.
func NewIdentityResolver(localUser string) *IdentityResolver {
	return &IdentityResolver{
		localUser: localUser,
		lookup:    user.Lookup,
	}
}

// Resolve looks up the template account and returns it with Username set
// to username. A missing or unreadable template account is an error; the
// caller must not treat it as a denial.
func (r *IdentityResolver) Resolve(username string) (*LocalIdentity, error) {
	tmpl, err := r.lookup(r.localUser)
	if err != nil {
		return nil, fmt.Errorf("looking up local user %q: %w", r.localUser, err)
	}

	return &LocalIdentity{
		Username:  username,
		LocalName: tmpl.Username,
		UID:       tmpl.Uid,
		GID:       tmpl.Gid,
		HomeDir:   tmpl.HomeDir,
	}, nil
}
