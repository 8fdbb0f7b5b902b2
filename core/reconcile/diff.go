package reconcile

import (
	"strconv"
	"time"

	"proxy-manager/core/inventory"
)

// FieldChange is one detected difference on a tracked field. Old and New are
// the stringified values recorded in the audit trail; Apply writes the new
// value to the local entity.
type FieldChange struct {
	Field string
	Old   string
	New   string

	apply func()
}

// Apply writes the upstream value to the local entity.
func (c FieldChange) Apply() { c.apply() }

// diffBuilder accumulates changes for one entity. Every tracked field is
// enumerated exactly once by the caller, so the comparison set is fixed at
// compile time instead of discovered through reflection.
type diffBuilder struct {
	changes []FieldChange
}

func (b *diffBuilder) str(field, oldVal, newVal string, apply func()) {
	if oldVal != newVal {
		b.changes = append(b.changes, FieldChange{Field: field, Old: oldVal, New: newVal, apply: apply})
	}
}

func (b *diffBuilder) boolean(field string, oldVal, newVal bool, apply func()) {
	b.str(field, strconv.FormatBool(oldVal), strconv.FormatBool(newVal), apply)
}

func (b *diffBuilder) integer(field string, oldVal, newVal int, apply func()) {
	b.str(field, strconv.Itoa(oldVal), strconv.Itoa(newVal), apply)
}

func (b *diffBuilder) timestamp(field string, oldVal, newVal time.Time, apply func()) {
	b.str(field, formatTime(oldVal), formatTime(newVal), apply)
}

func (b *diffBuilder) ref(field string, oldVal, newVal *int64, apply func()) {
	b.str(field, formatRef(oldVal), formatRef(newVal), apply)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatRef(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

// proxyChanges compares the tracked proxy fields against the fetched values.
// Tracked: name, tariff plan, tariff expiration, device model, active.
func proxyChanges(local *inventory.Proxy, in *NormalizedProxy) []FieldChange {
	var b diffBuilder
	b.str("name", local.Name, in.Name, func() { local.Name = in.Name })
	b.str("tariff_plan", local.TariffPlan, in.TariffPlan, func() { local.TariffPlan = in.TariffPlan })
	b.timestamp("tariff_expiration_date", local.TariffExpiresAt, in.TariffExpiresAt, func() { local.TariffExpiresAt = in.TariffExpiresAt })
	b.str("device_model", local.DeviceModel, in.DeviceModel, func() { local.DeviceModel = in.DeviceModel })
	b.boolean("active", local.Active, in.Active, func() { local.Active = in.Active })
	return b.changes
}

// connectionChanges compares the tracked connection fields against the
// fetched values. Tracked: proxy, name, description, host, port, login,
// password, connection type, owner, active. The resolved host and owner ids
// stand in for the raw ip and owner tag; proxyID is the proxy the provider
// currently reports the connection under.
func connectionChanges(local *inventory.Connection, in *NormalizedConnection, proxyID string, hostID, userID *int64) []FieldChange {
	var b diffBuilder
	b.str("proxy_id", local.ProxyID, proxyID, func() { local.ProxyID = proxyID })
	b.str("name", local.Name, in.Name, func() { local.Name = in.Name })
	b.str("description", local.Description, in.Description, func() { local.Description = in.Description })
	b.ref("host_id", local.HostID, hostID, func() { local.HostID = hostID })
	b.integer("port", local.Port, in.Port, func() { local.Port = in.Port })
	b.str("login", local.Login, in.Login, func() { local.Login = in.Login })
	b.str("password", local.Password, in.Password, func() { local.Password = in.Password })
	b.str("connection_type", local.ConnectionType, in.Type, func() { local.ConnectionType = in.Type })
	b.ref("user_id", local.UserID, userID, func() { local.UserID = userID })
	b.boolean("active", local.Active, in.Active, func() { local.Active = in.Active })
	return b.changes
}
