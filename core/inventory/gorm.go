package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the inventory tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Host{},
		&Proxy{},
		&Connection{},
		&ChangeRecord{},
		&AssignmentChange{},
	)
}

// gormStore implements Store on a *gorm.DB.
type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) InTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (s *gormStore) ConnectionHistory(ctx context.Context, connectionID string) ([]ChangeRecord, []AssignmentChange, error) {
	var changes []ChangeRecord
	err := s.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", EntityConnection, connectionID).
		Order("changed_at").
		Find(&changes).Error
	if err != nil {
		return nil, nil, fmt.Errorf("load change records: %w", err)
	}

	var assignments []AssignmentChange
	err = s.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("changed_at").
		Find(&assignments).Error
	if err != nil {
		return nil, nil, fmt.Errorf("load assignment changes: %w", err)
	}

	return changes, assignments, nil
}

// gormTx implements Tx on a transaction handle.
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) ProxiesByProvider(provider string) ([]Proxy, error) {
	var proxies []Proxy
	if err := t.db.Where("provider = ?", provider).Find(&proxies).Error; err != nil {
		return nil, err
	}
	return proxies, nil
}

func (t *gormTx) CreateProxy(p *Proxy) error {
	return t.db.Create(p).Error
}

func (t *gormTx) SaveProxy(p *Proxy) error {
	return t.db.Save(p).Error
}

func (t *gormTx) ConnectionsByProxy(proxyID string) ([]Connection, error) {
	var conns []Connection
	if err := t.db.Where("proxy_id = ?", proxyID).Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (t *gormTx) ConnectionByID(id string) (*Connection, error) {
	var conn Connection
	err := t.db.Where("id = ?", id).First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (t *gormTx) CreateConnection(c *Connection) error {
	return t.db.Create(c).Error
}

func (t *gormTx) SaveConnection(c *Connection) error {
	return t.db.Save(c).Error
}

func (t *gormTx) UserByUsername(username string) (*User, error) {
	var user User
	err := t.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (t *gormTx) CreateUser(u *User) error {
	return t.db.Create(u).Error
}

func (t *gormTx) HostByIP(ip string) (*Host, error) {
	var host Host
	err := t.db.Where("ip = ?", ip).First(&host).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &host, nil
}

func (t *gormTx) CreateHost(h *Host) error {
	return t.db.Create(h).Error
}

func (t *gormTx) AppendChangeRecord(r *ChangeRecord) error {
	return t.db.Create(r).Error
}

func (t *gormTx) AppendAssignmentChange(a *AssignmentChange) error {
	return t.db.Create(a).Error
}
