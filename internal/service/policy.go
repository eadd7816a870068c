package service

import "github.com/SrebrinSharbanov/ControlCards/internal/entity"

// Card actions.
const (
	ActionCreate  = "create"
	ActionExtend  = "extend"
	ActionClose   = "close"
	ActionArchive = "archive"
)

// IsPermitted decides whether a role may perform an action on a card. Pure
// function: role capability plus, where the action is status-gated, the
// card's current status. card may be nil for ActionCreate.
//
// ADMIN closes from CREATED as well as EXTENDED; everyone else only from
// EXTENDED.
func IsPermitted(role, action string, card *entity.Card) bool {
	switch action {
	case ActionCreate:
		return role == entity.RoleWorker || role == entity.RoleAdmin
	case ActionExtend:
		if role != entity.RoleTechnician && role != entity.RoleAdmin {
			return false
		}
		return statusAllows(card, entity.CardStatusExtended)
	case ActionClose:
		switch role {
		case entity.RoleAdmin:
			return statusAllows(card, entity.CardStatusClosed)
		case entity.RoleManager, entity.RoleProductionManager:
			// CREATED→CLOSED is in the transition table but reserved for
			// admins; everyone else closes from EXTENDED only.
			return card != nil && card.Status == entity.CardStatusExtended &&
				statusAllows(card, entity.CardStatusClosed)
		default:
			return false
		}
	case ActionArchive:
		if role != entity.RoleProductionManager && role != entity.RoleAdmin {
			return false
		}
		return card != nil && card.Status == entity.CardStatusClosed
	}
	return false
}

// statusAllows reports whether the transition table permits moving the card
// from its current status to next. Archive is not checked here: it is not a
// live-card transition, it moves the row to the archive table.
func statusAllows(card *entity.Card, next string) bool {
	if card == nil {
		return false
	}
	for _, to := range entity.ValidCardTransitions[card.Status] {
		if to == next {
			return true
		}
	}
	return false
}

// CanExtend is the UI-affordance guard for the extend form: the card must
// still be CREATED, and the requesting actor must not be the one who already
// extended it. A different technician may still act on an already-touched
// card; this is deliberate, do not tighten it to "never extended".
func CanExtend(card *entity.Card, actorID string) bool {
	if card == nil || card.Status != entity.CardStatusCreated {
		return false
	}
	return card.ExtendedBy == "" || card.ExtendedBy != actorID
}

// VisibleWorkshopIDs returns the workshop scope for list queries: nil for
// admins (unscoped), otherwise the actor's assignments. An empty non-nil
// slice means the actor sees nothing.
func VisibleWorkshopIDs(actor *entity.User) []string {
	if actor.Role == entity.RoleAdmin {
		return nil
	}
	if actor.WorkshopIDs == nil {
		return []string{}
	}
	return actor.WorkshopIDs
}
