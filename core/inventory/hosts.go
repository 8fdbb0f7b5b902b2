package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// UnknownCountry is the country code assigned to hosts until an external
// enrichment fills it in.
const UnknownCountry = "unknown"

// HostRegistry deduplicates physical egress-IP metadata. It is transaction
// scoped.
type HostRegistry struct {
	tx Tx
}

// NewHostRegistry creates a registry bound to one transaction.
func NewHostRegistry(tx Tx) *HostRegistry {
	return &HostRegistry{tx: tx}
}

// Resolve returns the host row for ip, creating it on first sight.
func (r *HostRegistry) Resolve(ip string) (*Host, error) {
	host, err := r.tx.HostByIP(ip)
	if err != nil {
		return nil, fmt.Errorf("lookup host %q: %w", ip, err)
	}
	if host != nil {
		return host, nil
	}

	host = &Host{IP: ip, CountryCode: UnknownCountry}
	err = r.tx.CreateHost(host)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		host, err = r.tx.HostByIP(ip)
		if err == nil && host == nil {
			err = fmt.Errorf("host %q vanished after duplicate-key error", ip)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create host %q: %w", ip, err)
	}
	return host, nil
}
