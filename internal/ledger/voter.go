package ledger

import "github.com/google/uuid"

// Action is an owner-level operation on a record.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// CanAccess decides whether actor may perform action on a record owned by
// ownerID. The rule is the same for view, edit and delete: the actor must be
// authenticated and must own the record. Administrators get no shortcut here;
// they act through the dedicated validate/reject operations instead.
func CanAccess(actor *User, ownerID uuid.UUID, action Action) bool {
	switch action {
	case ActionView, ActionEdit, ActionDelete:
	default:
		return false
	}
	if actor == nil || actor.ID == uuid.Nil {
		return false
	}
	return actor.ID == ownerID
}
