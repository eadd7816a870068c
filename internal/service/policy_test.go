package service

import (
	"testing"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
)

func TestIsPermittedCreate(t *testing.T) {
	if !IsPermitted(entity.RoleWorker, ActionCreate, nil) {
		t.Error("worker should be able to create")
	}
	if !IsPermitted(entity.RoleAdmin, ActionCreate, nil) {
		t.Error("admin should be able to create")
	}
	if IsPermitted(entity.RoleTechnician, ActionCreate, nil) {
		t.Error("technician should not be able to create")
	}
	if IsPermitted(entity.RoleManager, ActionCreate, nil) {
		t.Error("manager should not be able to create")
	}
}

func TestIsPermittedExtend(t *testing.T) {
	created := &entity.Card{Status: entity.CardStatusCreated}
	extended := &entity.Card{Status: entity.CardStatusExtended}

	if !IsPermitted(entity.RoleTechnician, ActionExtend, created) {
		t.Error("technician should extend a CREATED card")
	}
	if !IsPermitted(entity.RoleAdmin, ActionExtend, created) {
		t.Error("admin should extend a CREATED card")
	}
	if IsPermitted(entity.RoleTechnician, ActionExtend, extended) {
		t.Error("extend must be blocked on an EXTENDED card")
	}
	if IsPermitted(entity.RoleWorker, ActionExtend, created) {
		t.Error("worker should not extend")
	}
	if IsPermitted(entity.RoleTechnician, ActionExtend, nil) {
		t.Error("extend on nil card must be false")
	}
}

func TestIsPermittedClose(t *testing.T) {
	created := &entity.Card{Status: entity.CardStatusCreated}
	extended := &entity.Card{Status: entity.CardStatusExtended}
	closed := &entity.Card{Status: entity.CardStatusClosed}

	if !IsPermitted(entity.RoleManager, ActionClose, extended) {
		t.Error("manager should close an EXTENDED card")
	}
	if !IsPermitted(entity.RoleProductionManager, ActionClose, extended) {
		t.Error("production manager should close an EXTENDED card")
	}
	if IsPermitted(entity.RoleManager, ActionClose, created) {
		t.Error("manager must not close a CREATED card")
	}
	// Admin escape hatch: close straight from CREATED.
	if !IsPermitted(entity.RoleAdmin, ActionClose, created) {
		t.Error("admin should close a CREATED card")
	}
	if !IsPermitted(entity.RoleAdmin, ActionClose, extended) {
		t.Error("admin should close an EXTENDED card")
	}
	if IsPermitted(entity.RoleAdmin, ActionClose, closed) {
		t.Error("nobody closes an already CLOSED card")
	}
	if IsPermitted(entity.RoleWorker, ActionClose, extended) {
		t.Error("worker should not close")
	}
}

func TestIsPermittedArchive(t *testing.T) {
	closed := &entity.Card{Status: entity.CardStatusClosed}
	extended := &entity.Card{Status: entity.CardStatusExtended}

	if !IsPermitted(entity.RoleProductionManager, ActionArchive, closed) {
		t.Error("production manager should archive a CLOSED card")
	}
	if !IsPermitted(entity.RoleAdmin, ActionArchive, closed) {
		t.Error("admin should archive a CLOSED card")
	}
	if IsPermitted(entity.RoleProductionManager, ActionArchive, extended) {
		t.Error("archive must require CLOSED")
	}
	if IsPermitted(entity.RoleManager, ActionArchive, closed) {
		t.Error("manager should not archive")
	}
}

func TestCanExtend(t *testing.T) {
	card := &entity.Card{Status: entity.CardStatusCreated}
	if !CanExtend(card, "tech-1") {
		t.Error("fresh CREATED card should be extendable")
	}

	card.ExtendedBy = "tech-1"
	if CanExtend(card, "tech-1") {
		t.Error("the same technician must not extend twice")
	}
	if !CanExtend(card, "tech-2") {
		t.Error("a different technician may still extend")
	}

	card.Status = entity.CardStatusExtended
	if CanExtend(card, "tech-2") {
		t.Error("extend affordance requires CREATED status")
	}
	if CanExtend(nil, "tech-1") {
		t.Error("nil card must not be extendable")
	}
}

func TestVisibleWorkshopIDs(t *testing.T) {
	admin := &entity.User{Role: entity.RoleAdmin, WorkshopIDs: []string{"w1"}}
	if VisibleWorkshopIDs(admin) != nil {
		t.Error("admin scope must be nil (unscoped)")
	}

	worker := &entity.User{Role: entity.RoleWorker, WorkshopIDs: []string{"w1", "w2"}}
	if got := VisibleWorkshopIDs(worker); len(got) != 2 {
		t.Errorf("expected 2 workshops, got %d", len(got))
	}

	unassigned := &entity.User{Role: entity.RoleWorker}
	scope := VisibleWorkshopIDs(unassigned)
	if scope == nil || len(scope) != 0 {
		t.Error("unassigned non-admin must get an empty, non-nil scope")
	}
}

func TestPolicyFollowsTransitionTable(t *testing.T) {
	contains := func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	}
	statuses := []string{entity.CardStatusCreated, entity.CardStatusExtended, entity.CardStatusClosed}
	for _, from := range statuses {
		card := &entity.Card{Status: from}
		wantExtend := contains(entity.ValidCardTransitions[from], entity.CardStatusExtended)
		if got := IsPermitted(entity.RoleTechnician, ActionExtend, card); got != wantExtend {
			t.Errorf("extend from %s: policy says %v, transition table says %v", from, got, wantExtend)
		}
		wantClose := contains(entity.ValidCardTransitions[from], entity.CardStatusClosed)
		if got := IsPermitted(entity.RoleAdmin, ActionClose, card); got != wantClose {
			t.Errorf("admin close from %s: policy says %v, transition table says %v", from, got, wantClose)
		}
	}
}

func TestValidCardTransitions(t *testing.T) {
	if len(entity.ValidCardTransitions[entity.CardStatusCreated]) != 2 {
		t.Error("CREATED should transition to EXTENDED and CLOSED")
	}
	if len(entity.ValidCardTransitions[entity.CardStatusExtended]) != 1 {
		t.Error("EXTENDED should only transition to CLOSED")
	}
	if _, ok := entity.ValidCardTransitions[entity.CardStatusClosed]; ok {
		t.Error("CLOSED is terminal for live cards")
	}
}
