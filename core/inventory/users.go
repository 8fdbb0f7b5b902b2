package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserResolver maps provider-supplied owner tags to local user identities,
// creating a placeholder identity on first sight. It is transaction scoped.
type UserResolver struct {
	tx  Tx
	log *zap.Logger
	now func() time.Time
}

// NewUserResolver creates a resolver bound to one transaction.
func NewUserResolver(tx Tx, log *zap.Logger) *UserResolver {
	return &UserResolver{tx: tx, log: log, now: time.Now}
}

// Resolve returns the user for the given owner tag, creating a placeholder if
// none exists. A leading "@" is stripped. Empty or unknown tags resolve to no
// owner (nil, nil).
//
// If the insert loses a uniqueness race, the row is re-read once; a second
// failure is returned so the caller can skip the owner assignment for this
// pass instead of aborting it.
func (r *UserResolver) Resolve(tag string) (*User, error) {
	username := strings.TrimPrefix(strings.TrimSpace(tag), "@")
	if username == "" || username == "N/A" {
		return nil, nil
	}

	user, err := r.tx.UserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", username, err)
	}
	if user != nil {
		return user, nil
	}

	joined := r.now()
	user = &User{
		Username: &username,
		JoinedAt: &joined,
		Active:   true,
	}
	err = r.tx.CreateUser(user)
	if err == nil {
		r.log.Info("created placeholder user", zap.String("username", username))
		return user, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}

	// Someone else resolved the tag first; re-read instead of failing.
	user, rereadErr := r.tx.UserByUsername(username)
	if rereadErr != nil {
		return nil, fmt.Errorf("re-read user %q after duplicate: %w", username, rereadErr)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q vanished after duplicate-key error", username)
	}
	return user, nil
}
