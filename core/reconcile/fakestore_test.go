package reconcile

import (
	"context"
	"sync"
	"sync/atomic"

	"proxy-manager/core/inventory"

	"gorm.io/gorm"
)

// fakeStore is an in-memory inventory.Store with copy-on-rollback
// transactions. It counts concurrently open transactions so tests can
// assert the engine never runs two passes for one provider at a time.
type fakeStore struct {
	mu   sync.Mutex
	data fakeData

	txStarted int32
	txActive  int32
	txMax     int32

	failCreateProxy      error
	failCreateConnection error
	failSaveConnection   error
	failUserLookup       error
}

type fakeData struct {
	proxies     map[string]inventory.Proxy
	connections map[string]inventory.Connection
	users       map[string]inventory.User
	hosts       map[string]inventory.Host
	changes     []inventory.ChangeRecord
	assignments []inventory.AssignmentChange
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data: fakeData{
			proxies:     make(map[string]inventory.Proxy),
			connections: make(map[string]inventory.Connection),
			users:       make(map[string]inventory.User),
			hosts:       make(map[string]inventory.Host),
		},
	}
}

func (d fakeData) clone() fakeData {
	out := fakeData{
		proxies:     make(map[string]inventory.Proxy, len(d.proxies)),
		connections: make(map[string]inventory.Connection, len(d.connections)),
		users:       make(map[string]inventory.User, len(d.users)),
		hosts:       make(map[string]inventory.Host, len(d.hosts)),
		changes:     append([]inventory.ChangeRecord(nil), d.changes...),
		assignments: append([]inventory.AssignmentChange(nil), d.assignments...),
		nextID:      d.nextID,
	}
	for k, v := range d.proxies {
		out.proxies[k] = v
	}
	for k, v := range d.connections {
		out.connections[k] = v
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.hosts {
		out.hosts[k] = v
	}
	return out
}

func (s *fakeStore) InTransaction(ctx context.Context, fn func(tx inventory.Tx) error) error {
	atomic.AddInt32(&s.txStarted, 1)
	active := atomic.AddInt32(&s.txActive, 1)
	for {
		max := atomic.LoadInt32(&s.txMax)
		if active <= max || atomic.CompareAndSwapInt32(&s.txMax, max, active) {
			break
		}
	}
	defer atomic.AddInt32(&s.txActive, -1)

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	err := fn(&fakeTx{s: s})
	if err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}
	return err
}

func (s *fakeStore) ConnectionHistory(ctx context.Context, connectionID string) ([]inventory.ChangeRecord, []inventory.AssignmentChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changes []inventory.ChangeRecord
	for _, c := range s.data.changes {
		if c.EntityKind == inventory.EntityConnection && c.EntityID == connectionID {
			changes = append(changes, c)
		}
	}
	var assignments []inventory.AssignmentChange
	for _, a := range s.data.assignments {
		if a.ConnectionID == connectionID {
			assignments = append(assignments, a)
		}
	}
	return changes, assignments, nil
}

// Test helpers reading committed state.

func (s *fakeStore) proxy(id string) (inventory.Proxy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.proxies[id]
	return p, ok
}

func (s *fakeStore) connection(id string) (inventory.Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.connections[id]
	return c, ok
}

func (s *fakeStore) user(username string) (inventory.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[username]
	return u, ok
}

func (s *fakeStore) changeRecords() []inventory.ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventory.ChangeRecord(nil), s.data.changes...)
}

func (s *fakeStore) assignmentChanges() []inventory.AssignmentChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventory.AssignmentChange(nil), s.data.assignments...)
}

func (s *fakeStore) counts() (proxies, connections, changes, assignments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.proxies), len(s.data.connections), len(s.data.changes), len(s.data.assignments)
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) ProxiesByProvider(provider string) ([]inventory.Proxy, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []inventory.Proxy
	for _, p := range t.s.data.proxies {
		if p.Provider == provider {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *fakeTx) CreateProxy(p *inventory.Proxy) error {
	if t.s.failCreateProxy != nil {
		return t.s.failCreateProxy
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.data.proxies[p.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	t.s.data.proxies[p.ID] = *p
	return nil
}

func (t *fakeTx) SaveProxy(p *inventory.Proxy) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.data.proxies[p.ID] = *p
	return nil
}

func (t *fakeTx) ConnectionsByProxy(proxyID string) ([]inventory.Connection, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []inventory.Connection
	for _, c := range t.s.data.connections {
		if c.ProxyID == proxyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (t *fakeTx) ConnectionByID(id string) (*inventory.Connection, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.data.connections[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *fakeTx) CreateConnection(c *inventory.Connection) error {
	if t.s.failCreateConnection != nil {
		return t.s.failCreateConnection
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.data.connections[c.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	t.s.data.connections[c.ID] = *c
	return nil
}

func (t *fakeTx) SaveConnection(c *inventory.Connection) error {
	if t.s.failSaveConnection != nil {
		return t.s.failSaveConnection
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.data.connections[c.ID] = *c
	return nil
}

func (t *fakeTx) UserByUsername(username string) (*inventory.User, error) {
	if t.s.failUserLookup != nil {
		return nil, t.s.failUserLookup
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	u, ok := t.s.data.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (t *fakeTx) CreateUser(u *inventory.User) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if u.Username == nil {
		return gorm.ErrInvalidData
	}
	if _, ok := t.s.data.users[*u.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	t.s.data.nextID++
	u.ID = t.s.data.nextID
	t.s.data.users[*u.Username] = *u
	return nil
}

func (t *fakeTx) HostByIP(ip string) (*inventory.Host, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	h, ok := t.s.data.hosts[ip]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (t *fakeTx) CreateHost(h *inventory.Host) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.data.hosts[h.IP]; ok {
		return gorm.ErrDuplicatedKey
	}
	t.s.data.nextID++
	h.ID = t.s.data.nextID
	t.s.data.hosts[h.IP] = *h
	return nil
}

func (t *fakeTx) AppendChangeRecord(r *inventory.ChangeRecord) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.data.nextID++
	r.ID = t.s.data.nextID
	t.s.data.changes = append(t.s.data.changes, *r)
	return nil
}

func (t *fakeTx) AppendAssignmentChange(a *inventory.AssignmentChange) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.data.nextID++
	a.ID = t.s.data.nextID
	t.s.data.assignments = append(t.s.data.assignments, *a)
	return nil
}
