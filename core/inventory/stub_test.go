package inventory

// stubTx lets resolver tests script individual Tx methods. Unscripted
// methods are never reached by the code under test.
type stubTx struct {
	Tx

	userByUsername func(username string) (*User, error)
	createUser     func(u *User) error
	hostByIP       func(ip string) (*Host, error)
	createHost     func(h *Host) error
}

func (s *stubTx) UserByUsername(username string) (*User, error) {
	return s.userByUsername(username)
}

func (s *stubTx) CreateUser(u *User) error {
	return s.createUser(u)
}

func (s *stubTx) HostByIP(ip string) (*Host, error) {
	return s.hostByIP(ip)
}

func (s *stubTx) CreateHost(h *Host) error {
	return s.createHost(h)
}
