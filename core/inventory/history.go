package inventory

import "time"

// HistoryRecorder is the sole write path for the audit trail. It only
// appends; no update or delete operation is exposed, so nothing can rewrite
// history once a pass commits. It is transaction scoped.
type HistoryRecorder struct {
	tx  Tx
	now func() time.Time
}

// NewHistoryRecorder creates a recorder bound to one transaction.
func NewHistoryRecorder(tx Tx) *HistoryRecorder {
	return &HistoryRecorder{tx: tx, now: time.Now}
}

// FieldChanged appends one change record for a single field edit. A nil
// actorID attributes the change to the provider sync.
func (r *HistoryRecorder) FieldChanged(kind EntityKind, entityID, field, oldValue, newValue string, actorID *int64) error {
	return r.tx.AppendChangeRecord(&ChangeRecord{
		EntityKind: kind,
		EntityID:   entityID,
		ActorID:    actorID,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedAt:  r.now(),
	})
}

// AssignmentChanged appends one ownership-transition record.
func (r *HistoryRecorder) AssignmentChanged(connectionID string, oldUserID, newUserID *int64, kind AssignmentKind) error {
	return r.tx.AppendAssignmentChange(&AssignmentChange{
		ConnectionID: connectionID,
		OldUserID:    oldUserID,
		NewUserID:    newUserID,
		Kind:         kind,
		ChangedAt:    r.now(),
	})
}
