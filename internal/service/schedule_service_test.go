package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/schedule"
	"go.uber.org/zap"
)

type fakeScheduleAPI struct {
	listCalls int
	schedules []schedule.WorkSchedule
	byID      map[string]*schedule.WorkSchedule
	deleted   []string
	err       error
}

func (f *fakeScheduleAPI) FetchSchedules(ctx context.Context, workCenter, date, shift string) ([]schedule.WorkSchedule, error) {
	f.listCalls++
	return f.schedules, f.err
}

func (f *fakeScheduleAPI) FetchSchedule(ctx context.Context, id string) (*schedule.WorkSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	if ws, ok := f.byID[id]; ok {
		return ws, nil
	}
	return nil, schedule.ErrNotFound
}

func (f *fakeScheduleAPI) CreateSchedule(ctx context.Context, ws schedule.WorkSchedule) (*schedule.WorkSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	ws.ID = "created-1"
	return &ws, nil
}

func (f *fakeScheduleAPI) UpdateSchedule(ctx context.Context, id string, ws schedule.WorkSchedule) (*schedule.WorkSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	ws.ID = id
	return &ws, nil
}

func (f *fakeScheduleAPI) DeleteSchedule(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestGetSchedulesValidation(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleAPI{}, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.GetSchedules(ctx, "", "2026-08-28", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("missing work center should fail validation, got %v", err)
	}
	if _, err := svc.GetSchedules(ctx, "110", "", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("missing date should fail validation, got %v", err)
	}
	if _, err := svc.GetSchedules(ctx, "110", "28.08.2026", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("malformed date should fail validation, got %v", err)
	}
	if _, err := svc.GetSchedules(ctx, "110", "2026-08-28", "NIGHT"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown shift should fail validation, got %v", err)
	}
}

func TestGetSchedulesPassesThroughWithoutCache(t *testing.T) {
	api := &fakeScheduleAPI{schedules: []schedule.WorkSchedule{
		{ID: "s1", Date: "2026-08-28", Shift: "FIRST", WorkCenter: "110", Product: "Корпус A", Quantity: 200, TimeInMinutes: 480},
	}}
	svc := NewScheduleService(api, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	got, err := svc.GetSchedules(ctx, "110", "2026-08-28", "")
	if err != nil {
		t.Fatalf("GetSchedules failed: %v", err)
	}
	if len(got) != 1 || got[0].Product != "Корпус A" {
		t.Errorf("unexpected schedules: %+v", got)
	}

	// No redis configured: every call hits the API, shift filter included.
	if _, err := svc.GetSchedules(ctx, "110", "2026-08-28", "FIRST"); err != nil {
		t.Fatalf("GetSchedules failed: %v", err)
	}
	if api.listCalls != 2 {
		t.Errorf("expected 2 API calls without cache, got %d", api.listCalls)
	}
}

func TestGetSchedulesAPIError(t *testing.T) {
	api := &fakeScheduleAPI{err: errors.New("mes unreachable")}
	svc := NewScheduleService(api, nil, time.Minute, zap.NewNop())

	if _, err := svc.GetSchedules(context.Background(), "110", "2026-08-28", ""); err == nil {
		t.Error("API error must propagate")
	}
}

func TestGetScheduleByID(t *testing.T) {
	api := &fakeScheduleAPI{byID: map[string]*schedule.WorkSchedule{
		"s1": {ID: "s1", Date: "2026-08-28", Shift: "FIRST", WorkCenter: "110"},
	}}
	svc := NewScheduleService(api, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	ws, err := svc.GetSchedule(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if ws.WorkCenter != "110" {
		t.Errorf("unexpected schedule: %+v", ws)
	}

	if _, err := svc.GetSchedule(ctx, "ghost"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("missing schedule should map to not-found, got %v", err)
	}
	if _, err := svc.GetSchedule(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("blank id should fail validation, got %v", err)
	}
}

func TestScheduleMutations(t *testing.T) {
	api := &fakeScheduleAPI{byID: map[string]*schedule.WorkSchedule{
		"s1": {ID: "s1", Date: "2026-08-28", Shift: "FIRST", WorkCenter: "110"},
	}}
	svc := NewScheduleService(api, nil, time.Minute, zap.NewNop())
	ctx := context.Background()

	created, err := svc.CreateSchedule(ctx, schedule.WorkSchedule{
		Date: "2026-08-29", Shift: "SECOND", WorkCenter: "110", Product: "Корпус Б", Quantity: 50,
	})
	if err != nil {
		t.Fatalf("CreateSchedule failed: %v", err)
	}
	if created.ID == "" {
		t.Error("create must return the MES-assigned id")
	}

	if _, err := svc.CreateSchedule(ctx, schedule.WorkSchedule{
		Date: "2026-08-29", Shift: "NIGHT", WorkCenter: "110",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("create with unknown shift should fail validation, got %v", err)
	}

	updated, err := svc.UpdateSchedule(ctx, "s1", schedule.WorkSchedule{
		Date: "2026-08-28", Shift: "THIRD", WorkCenter: "110",
	})
	if err != nil {
		t.Fatalf("UpdateSchedule failed: %v", err)
	}
	if updated.ID != "s1" || updated.Shift != "THIRD" {
		t.Errorf("unexpected updated schedule: %+v", updated)
	}
	if _, err := svc.UpdateSchedule(ctx, "ghost", schedule.WorkSchedule{
		Date: "2026-08-28", Shift: "FIRST", WorkCenter: "110",
	}); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("update of a missing schedule should be not-found, got %v", err)
	}

	if err := svc.DeleteSchedule(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSchedule failed: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "s1" {
		t.Errorf("expected s1 deleted via the API, got %v", api.deleted)
	}
	if err := svc.DeleteSchedule(ctx, "ghost"); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("delete of a missing schedule should be not-found, got %v", err)
	}
}
