package inventory

import "context"

// Store is the persistence boundary for the inventory. The sync engine only
// writes through InTransaction; the read methods serve the status API.
type Store interface {
	// InTransaction runs fn inside one transaction. Any error from fn rolls
	// the whole transaction back.
	InTransaction(ctx context.Context, fn func(tx Tx) error) error

	// ConnectionHistory returns the audit trail for one connection.
	ConnectionHistory(ctx context.Context, connectionID string) ([]ChangeRecord, []AssignmentChange, error)
}

// Tx is the transaction-scoped view of the store. Lookups that find nothing
// return (nil, nil) rather than an error.
type Tx interface {
	ProxiesByProvider(provider string) ([]Proxy, error)
	CreateProxy(p *Proxy) error
	SaveProxy(p *Proxy) error

	ConnectionsByProxy(proxyID string) ([]Connection, error)
	ConnectionByID(id string) (*Connection, error)
	CreateConnection(c *Connection) error
	SaveConnection(c *Connection) error

	UserByUsername(username string) (*User, error)
	CreateUser(u *User) error

	HostByIP(ip string) (*Host, error)
	CreateHost(h *Host) error

	AppendChangeRecord(r *ChangeRecord) error
	AppendAssignmentChange(a *AssignmentChange) error
}
