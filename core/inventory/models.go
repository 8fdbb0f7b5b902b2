package inventory

import "time"

// AssignmentKind classifies an ownership transition on a connection.
type AssignmentKind string

const (
	// AssignmentAssigned marks the first owner of a new connection.
	AssignmentAssigned AssignmentKind = "assigned"
	// AssignmentReassigned marks an ownership change between two owners.
	AssignmentReassigned AssignmentKind = "reassigned"
	// AssignmentUnassigned marks a connection losing its owner, usually on
	// soft deletion.
	AssignmentUnassigned AssignmentKind = "unassigned"
)

// EntityKind identifies which entity a change record belongs to.
type EntityKind string

const (
	EntityProxy      EntityKind = "proxy"
	EntityConnection EntityKind = "connection"
)

// User is a resolved owner identity. Rows created by the sync are placeholders
// (owner tag only); the chat layer upgrades them with a chat id later.
type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	ChatID    *int64     `gorm:"index"`
	Username  *string    `gorm:"size:255;uniqueIndex"`
	FirstName *string    `gorm:"size:255"`
	LastName  *string    `gorm:"size:255"`
	JoinedAt  *time.Time
	Active    bool `gorm:"default:true"`
}

// Host is deduplicated egress IP metadata. Created lazily the first time a
// connection references an unseen ip.
type Host struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	IP          string `gorm:"size:64;uniqueIndex;not null"`
	CountryCode string `gorm:"size:8;default:unknown"`
}

// Proxy is a leasable device slot reported by a provider. Rows are never hard
// deleted; Active flips to false when the provider stops reporting the id.
type Proxy struct {
	ID              string `gorm:"primaryKey;size:255"`
	Provider        string `gorm:"size:16;index;not null"`
	PhoneID         *int64
	Name            string `gorm:"size:255"`
	TariffPlan      string `gorm:"size:255"`
	TariffExpiresAt time.Time
	LeaseExpiresAt  *time.Time
	DeviceModel     string `gorm:"size:255"`
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Connection is one network egress endpoint under a Proxy. Deleted is
// terminal: a soft-deleted connection is never revived, the provider must
// issue a new id instead.
type Connection struct {
	ID             string `gorm:"primaryKey;size:255"`
	ProxyID        string `gorm:"size:255;index;not null"`
	UserID         *int64 `gorm:"index"`
	HostID         *int64
	Name           string `gorm:"size:255"`
	Description    string `gorm:"size:255"`
	Port           int
	Login          string `gorm:"size:255"`
	Password       string `gorm:"size:255"`
	ConnectionType string `gorm:"size:32"`
	Active         bool
	Deleted        bool `gorm:"index"`
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ChangeRecord is an immutable field-level audit entry. A nil ActorID means
// the change was applied by the provider sync.
type ChangeRecord struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	EntityKind EntityKind `gorm:"size:16;not null"`
	EntityID   string     `gorm:"size:255;index;not null"`
	ActorID    *int64
	Field      string `gorm:"size:64;not null"`
	OldValue   string `gorm:"size:512"`
	NewValue   string `gorm:"size:512"`
	ChangedAt  time.Time
}

// AssignmentChange is an immutable ownership-transition audit entry.
// Either user id may be nil: assigned has no old owner, unassigned no new one.
type AssignmentChange struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	ConnectionID string `gorm:"size:255;index;not null"`
	OldUserID    *int64
	NewUserID    *int64
	Kind         AssignmentKind `gorm:"size:16;not null"`
	ChangedAt    time.Time
}
