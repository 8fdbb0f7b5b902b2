package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestHostResolveReturnsExisting(t *testing.T) {
	tx := &stubTx{
		hostByIP: func(ip string) (*Host, error) {
			return &Host{ID: 3, IP: ip, CountryCode: "de"}, nil
		},
	}
	r := NewHostRegistry(tx)

	host, err := r.Resolve("203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, int64(3), host.ID)
	assert.Equal(t, "de", host.CountryCode)
}

func TestHostResolveCreatesUnknownCountry(t *testing.T) {
	var created *Host
	tx := &stubTx{
		hostByIP: func(ip string) (*Host, error) { return nil, nil },
		createHost: func(h *Host) error {
			h.ID = 9
			created = h
			return nil
		},
	}
	r := NewHostRegistry(tx)

	host, err := r.Resolve("203.0.113.8")
	require.NoError(t, err)
	assert.Equal(t, int64(9), host.ID)

	require.NotNil(t, created)
	assert.Equal(t, "203.0.113.8", created.IP)
	assert.Equal(t, UnknownCountry, created.CountryCode)
}

func TestHostResolveReReadsAfterDuplicate(t *testing.T) {
	lookups := 0
	tx := &stubTx{
		hostByIP: func(ip string) (*Host, error) {
			lookups++
			if lookups == 1 {
				return nil, nil
			}
			return &Host{ID: 5, IP: ip}, nil
		},
		createHost: func(h *Host) error { return gorm.ErrDuplicatedKey },
	}
	r := NewHostRegistry(tx)

	host, err := r.Resolve("203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, int64(5), host.ID)
	assert.Equal(t, 2, lookups)
}
