package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// List buckets.
const (
	BucketCreated  = "created"
	BucketExtended = "extended"
	BucketClosed   = "closed"
	BucketArchived = "archived"
	BucketAll      = "all"
)

const (
	shortDescriptionMaxLen    = 500
	detailedDescriptionMaxLen = 2000
)

// CreateCardRequest is the payload for raising a new card.
type CreateCardRequest struct {
	WorkshopID       string `json:"workshop_id" binding:"required"`
	WorkCenterID     string `json:"work_center_id" binding:"required"`
	Shift            string `json:"shift" binding:"required"`
	ShortDescription string `json:"short_description" binding:"required"`
}

// ExtendCardRequest is the payload a technician attaches when extending.
// Both fields are optional: a blank description and a nil duration leave the
// card's current values untouched.
type ExtendCardRequest struct {
	DetailedDescription       string `json:"detailed_description"`
	ResolutionDurationMinutes *int   `json:"resolution_duration_minutes"`
}

// CardView is a card projected for display: references resolved to names,
// shift rendered with its label. Archived cards carry the archival fields.
type CardView struct {
	ID                        string     `json:"id"`
	WorkshopID                string     `json:"workshop_id"`
	WorkshopName              string     `json:"workshop_name"`
	WorkCenterID              string     `json:"work_center_id"`
	WorkCenterNumber          string     `json:"work_center_number"`
	Shift                     string     `json:"shift"`
	ShiftName                 string     `json:"shift_name"`
	ShortDescription          string     `json:"short_description"`
	DetailedDescription       string     `json:"detailed_description,omitempty"`
	ResolutionDurationMinutes *int       `json:"resolution_duration_minutes,omitempty"`
	Status                    string     `json:"status"`
	CreatedBy                 string     `json:"created_by"`
	CreatedByName             string     `json:"created_by_name"`
	CreatedAt                 time.Time  `json:"created_at"`
	ExtendedBy                string     `json:"extended_by,omitempty"`
	ExtendedByName            string     `json:"extended_by_name,omitempty"`
	ExtendedAt                *time.Time `json:"extended_at,omitempty"`
	ClosedBy                  string     `json:"closed_by,omitempty"`
	ClosedByName              string     `json:"closed_by_name,omitempty"`
	ClosedAt                  *time.Time `json:"closed_at,omitempty"`
	ArchivedBy                string     `json:"archived_by,omitempty"`
	ArchivedByName            string     `json:"archived_by_name,omitempty"`
	ArchivedAt                *time.Time `json:"archived_at,omitempty"`
}

// CardAbilities tells the UI which actions the actor may attempt on a card
// right now. Probes, not promises: the action itself re-checks.
type CardAbilities struct {
	Exists     bool `json:"exists"`
	CanExtend  bool `json:"can_extend"`
	CanClose   bool `json:"can_close"`
	CanArchive bool `json:"can_archive"`
}

// DashboardCounts summarizes the card population visible to an actor.
type DashboardCounts struct {
	Created  int64 `json:"created"`
	Extended int64 `json:"extended"`
	Closed   int64 `json:"closed"`
	Archived int64 `json:"archived"`
}

// CardService is the card lifecycle facade: create, list, extend, close,
// archive, plus the read-only ability probes. Every operation takes the
// acting user; visibility and status rules are enforced here, role gating at
// the route level.
type CardService struct {
	cardRepo       *repository.CardRepository
	archivedRepo   *repository.ArchivedCardRepository
	workshopRepo   *repository.WorkshopRepository
	workCenterRepo *repository.WorkCenterRepository
	userRepo       *repository.UserRepository
	logs           *LogEntryService
	logger         *zap.Logger
}

func NewCardService(
	cardRepo *repository.CardRepository,
	archivedRepo *repository.ArchivedCardRepository,
	workshopRepo *repository.WorkshopRepository,
	workCenterRepo *repository.WorkCenterRepository,
	userRepo *repository.UserRepository,
	logs *LogEntryService,
	logger *zap.Logger,
) *CardService {
	return &CardService{
		cardRepo:       cardRepo,
		archivedRepo:   archivedRepo,
		workshopRepo:   workshopRepo,
		workCenterRepo: workCenterRepo,
		userRepo:       userRepo,
		logs:           logs,
		logger:         logger,
	}
}

// CreateCard raises a new card in status CREATED.
func (s *CardService) CreateCard(ctx context.Context, actor *entity.User, req CreateCardRequest) (*CardView, error) {
	req.ShortDescription = strings.TrimSpace(req.ShortDescription)
	if req.ShortDescription == "" {
		return nil, fmt.Errorf("%w: short description is required", ErrValidation)
	}
	if len([]rune(req.ShortDescription)) > shortDescriptionMaxLen {
		return nil, fmt.Errorf("%w: short description exceeds %d characters", ErrValidation, shortDescriptionMaxLen)
	}
	if !entity.IsValidShift(req.Shift) {
		return nil, fmt.Errorf("%w: unknown shift %q", ErrValidation, req.Shift)
	}

	workshop, err := s.workshopRepo.FindByID(ctx, req.WorkshopID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkshopNotFound, req.WorkshopID)
		}
		return nil, err
	}
	if actor.Role != entity.RoleAdmin && !actor.IsAssignedTo(workshop.ID) {
		return nil, fmt.Errorf("%w: %s", ErrWorkshopNotFound, req.WorkshopID)
	}
	workCenter, err := s.workCenterRepo.FindByID(ctx, req.WorkCenterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkCenterNotFound, req.WorkCenterID)
		}
		return nil, err
	}
	if workCenter.WorkshopID != workshop.ID {
		return nil, fmt.Errorf("%w: work center %s does not belong to workshop %s",
			ErrValidation, workCenter.ID, workshop.ID)
	}

	card := &entity.Card{
		ID:               uuid.New().String()[:32],
		WorkshopID:       workshop.ID,
		WorkCenterID:     workCenter.ID,
		Shift:            req.Shift,
		ShortDescription: req.ShortDescription,
		Status:           entity.CardStatusCreated,
		CreatedBy:        actor.ID,
		CreatedAt:        time.Now(),
	}
	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	s.logs.Record(ctx, actor, "Създадена нова карта: "+card.ShortDescription)
	s.logger.Info("card created",
		zap.String("card_id", card.ID),
		zap.String("workshop_id", card.WorkshopID),
		zap.String("user_id", actor.ID))
	return s.toView(ctx, card, nil)
}

// GetCard fetches one card visible to the actor, looking in the live table
// first and falling back to the archive.
func (s *CardService) GetCard(ctx context.Context, actor *entity.User, id string) (*CardView, error) {
	card, err := s.visibleCard(ctx, actor, id)
	if err == nil {
		return s.toView(ctx, card, nil)
	}
	if !errors.Is(err, ErrCardNotFound) {
		return nil, err
	}
	archived, aerr := s.archivedRepo.FindByID(ctx, id)
	if aerr != nil {
		if errors.Is(aerr, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		return nil, aerr
	}
	if actor.Role != entity.RoleAdmin && !actor.IsAssignedTo(archived.WorkshopID) {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return s.toView(ctx, nil, archived)
}

// ListCards returns the cards in a bucket, restricted to the actor's
// workshops. A non-admin with no assignments sees an empty list.
func (s *CardService) ListCards(ctx context.Context, actor *entity.User, bucket string) ([]CardView, error) {
	scope := VisibleWorkshopIDs(actor)

	switch bucket {
	case BucketCreated, BucketExtended, BucketClosed:
		status := strings.ToUpper(bucket)
		var (
			cards []entity.Card
			err   error
		)
		if scope == nil {
			cards, err = s.cardRepo.FindByStatus(ctx, status)
		} else {
			cards, err = s.cardRepo.FindByStatusAndWorkshopIDs(ctx, status, scope)
		}
		if err != nil {
			return nil, err
		}
		return s.toViews(ctx, cards, nil)
	case BucketArchived:
		var (
			archived []entity.ArchivedCard
			err      error
		)
		if scope == nil {
			archived, err = s.archivedRepo.FindAll(ctx)
		} else {
			archived, err = s.archivedRepo.FindByWorkshopIDs(ctx, scope)
		}
		if err != nil {
			return nil, err
		}
		return s.toViews(ctx, nil, archived)
	case BucketAll:
		var (
			cards []entity.Card
			err   error
		)
		if scope == nil {
			cards, err = s.cardRepo.FindAll(ctx)
		} else {
			cards, err = s.cardRepo.FindByWorkshopIDs(ctx, scope)
		}
		if err != nil {
			return nil, err
		}
		return s.toViews(ctx, cards, nil)
	default:
		return nil, fmt.Errorf("%w: unknown bucket %q", ErrValidation, bucket)
	}
}

// ExtendCard moves a CREATED card to EXTENDED, attaching whatever diagnosis
// details the technician supplied.
func (s *CardService) ExtendCard(ctx context.Context, actor *entity.User, id string, req ExtendCardRequest) (*CardView, error) {
	req.DetailedDescription = strings.TrimSpace(req.DetailedDescription)
	if len([]rune(req.DetailedDescription)) > detailedDescriptionMaxLen {
		return nil, fmt.Errorf("%w: detailed description exceeds %d characters", ErrValidation, detailedDescriptionMaxLen)
	}
	if req.ResolutionDurationMinutes != nil && *req.ResolutionDurationMinutes < 1 {
		return nil, fmt.Errorf("%w: resolution duration must be at least 1 minute", ErrValidation)
	}

	card, err := s.visibleCard(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !IsPermitted(actor.Role, ActionExtend, card) {
		return nil, fmt.Errorf("%w: cannot extend card in status %s", ErrInvalidCardStatus, card.Status)
	}

	now := time.Now()
	if req.DetailedDescription != "" {
		card.DetailedDescription = req.DetailedDescription
	}
	if req.ResolutionDurationMinutes != nil {
		card.ResolutionDurationMinutes = req.ResolutionDurationMinutes
	}
	card.Status = entity.CardStatusExtended
	card.ExtendedBy = actor.ID
	card.ExtendedAt = &now
	card.UpdatedBy = actor.ID
	card.UpdatedAt = &now
	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, err
	}

	s.logs.Record(ctx, actor, "Разширена карта ID: "+describeCard(card))
	s.logger.Info("card extended",
		zap.String("card_id", card.ID),
		zap.String("user_id", actor.ID))
	return s.toView(ctx, card, nil)
}

// CloseCard moves a card to CLOSED. Managers and production managers close
// from EXTENDED only; an admin may also close straight from CREATED.
func (s *CardService) CloseCard(ctx context.Context, actor *entity.User, id string) (*CardView, error) {
	card, err := s.visibleCard(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !IsPermitted(actor.Role, ActionClose, card) {
		return nil, fmt.Errorf("%w: cannot close card in status %s", ErrInvalidCardStatus, card.Status)
	}

	now := time.Now()
	card.Status = entity.CardStatusClosed
	card.ClosedBy = actor.ID
	card.ClosedAt = &now
	card.UpdatedBy = actor.ID
	card.UpdatedAt = &now
	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, err
	}

	s.logs.Record(ctx, actor, "Затворена карта ID: "+describeCard(card))
	s.logger.Info("card closed",
		zap.String("card_id", card.ID),
		zap.String("user_id", actor.ID))
	return s.toView(ctx, card, nil)
}

// ArchiveCard snapshots a CLOSED card into the archive and deletes the live
// row, both in one transaction. The snapshot keeps the card's id.
func (s *CardService) ArchiveCard(ctx context.Context, actor *entity.User, id string) (*CardView, error) {
	card, err := s.visibleCard(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !IsPermitted(actor.Role, ActionArchive, card) {
		return nil, fmt.Errorf("%w: cannot archive card in status %s", ErrInvalidCardStatus, card.Status)
	}

	archived := entity.NewArchivedCard(card, actor.ID)
	if err := s.cardRepo.Archive(ctx, card.ID, archived); err != nil {
		return nil, err
	}

	s.logs.Record(ctx, actor, "Архивирана карта ID: "+describeCard(card))
	s.logger.Info("card archived",
		zap.String("card_id", card.ID),
		zap.String("user_id", actor.ID))
	return s.toView(ctx, nil, archived)
}

// CardExists reports whether a live card with this id is visible to the
// actor. Probes never fail: on any error the answer is false.
func (s *CardService) CardExists(ctx context.Context, actor *entity.User, id string) bool {
	_, err := s.visibleCard(ctx, actor, id)
	return err == nil
}

// CanExtendCard reports whether the actor could extend this card right now.
func (s *CardService) CanExtendCard(ctx context.Context, actor *entity.User, id string) bool {
	card, err := s.visibleCard(ctx, actor, id)
	if err != nil {
		return false
	}
	return IsPermitted(actor.Role, ActionExtend, card) && CanExtend(card, actor.ID)
}

// CanCloseCard reports whether the actor could close this card right now.
func (s *CardService) CanCloseCard(ctx context.Context, actor *entity.User, id string) bool {
	card, err := s.visibleCard(ctx, actor, id)
	if err != nil {
		return false
	}
	return IsPermitted(actor.Role, ActionClose, card)
}

// CanArchiveCard reports whether the actor could archive this card right now.
func (s *CardService) CanArchiveCard(ctx context.Context, actor *entity.User, id string) bool {
	card, err := s.visibleCard(ctx, actor, id)
	if err != nil {
		return false
	}
	return IsPermitted(actor.Role, ActionArchive, card)
}

// Abilities bundles the four probes for one card into a single answer.
func (s *CardService) Abilities(ctx context.Context, actor *entity.User, id string) CardAbilities {
	card, err := s.visibleCard(ctx, actor, id)
	if err != nil {
		return CardAbilities{}
	}
	return CardAbilities{
		Exists:     true,
		CanExtend:  IsPermitted(actor.Role, ActionExtend, card) && CanExtend(card, actor.ID),
		CanClose:   IsPermitted(actor.Role, ActionClose, card),
		CanArchive: IsPermitted(actor.Role, ActionArchive, card),
	}
}

// CountCards returns per-status counts for the actor's scope.
func (s *CardService) CountCards(ctx context.Context, actor *entity.User) (*DashboardCounts, error) {
	scope := VisibleWorkshopIDs(actor)
	counts := &DashboardCounts{}
	var err error
	if counts.Created, err = s.cardRepo.CountByStatus(ctx, entity.CardStatusCreated, scope); err != nil {
		return nil, err
	}
	if counts.Extended, err = s.cardRepo.CountByStatus(ctx, entity.CardStatusExtended, scope); err != nil {
		return nil, err
	}
	if counts.Closed, err = s.cardRepo.CountByStatus(ctx, entity.CardStatusClosed, scope); err != nil {
		return nil, err
	}
	if counts.Archived, err = s.archivedRepo.Count(ctx, scope); err != nil {
		return nil, err
	}
	return counts, nil
}

// ExportArchive renders the archived cards visible to the actor as an xlsx
// workbook.
func (s *CardService) ExportArchive(ctx context.Context, actor *entity.User) (*excelize.File, error) {
	views, err := s.ListCards(ctx, actor, BucketArchived)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Архив"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"ID", "Цех", "Работен център", "Смяна",
		"Кратко описание", "Подробно описание", "Време (мин)",
		"Създадена от", "Създадена на",
		"Затворена от", "Затворена на",
		"Архивирана от", "Архивирана на",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, v := range views {
		duration := ""
		if v.ResolutionDurationMinutes != nil {
			duration = strconv.Itoa(*v.ResolutionDurationMinutes)
		}
		values := []interface{}{
			v.ID, v.WorkshopName, v.WorkCenterNumber, v.ShiftName,
			v.ShortDescription, v.DetailedDescription, duration,
			v.CreatedByName, v.CreatedAt.Format("2006-01-02 15:04"),
			v.ClosedByName, formatTimePtr(v.ClosedAt),
			v.ArchivedByName, formatTimePtr(v.ArchivedAt),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}
	return f, nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// visibleCard fetches a live card and applies workshop scoping. Out-of-scope
// cards are reported as not found, indistinguishable from missing ones.
func (s *CardService) visibleCard(ctx context.Context, actor *entity.User, id string) (*entity.Card, error) {
	card, err := s.cardRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
		}
		return nil, err
	}
	if actor.Role != entity.RoleAdmin && !actor.IsAssignedTo(card.WorkshopID) {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return card, nil
}

// toView projects one card. Exactly one of card and archived must be set.
func (s *CardService) toView(ctx context.Context, card *entity.Card, archived *entity.ArchivedCard) (*CardView, error) {
	var views []CardView
	var err error
	if card != nil {
		views, err = s.toViews(ctx, []entity.Card{*card}, nil)
	} else {
		views, err = s.toViews(ctx, nil, []entity.ArchivedCard{*archived})
	}
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// toViews projects cards for display, resolving workshop, work center and
// user references in three batch lookups.
func (s *CardService) toViews(ctx context.Context, cards []entity.Card, archived []entity.ArchivedCard) ([]CardView, error) {
	workshopIDs := make(map[string]struct{})
	workCenterIDs := make(map[string]struct{})
	userIDs := make(map[string]struct{})
	collect := func(workshopID, workCenterID string, users ...string) {
		workshopIDs[workshopID] = struct{}{}
		workCenterIDs[workCenterID] = struct{}{}
		for _, u := range users {
			if u != "" {
				userIDs[u] = struct{}{}
			}
		}
	}
	for i := range cards {
		c := &cards[i]
		collect(c.WorkshopID, c.WorkCenterID, c.CreatedBy, c.ExtendedBy, c.ClosedBy)
	}
	for i := range archived {
		a := &archived[i]
		collect(a.WorkshopID, a.WorkCenterID, a.CreatedBy, a.ExtendedBy, a.ClosedBy, a.ArchivedBy)
	}

	workshops, err := s.workshopRepo.FindByIDs(ctx, keys(workshopIDs))
	if err != nil {
		return nil, err
	}
	workCenters, err := s.workCenterRepo.FindByIDs(ctx, keys(workCenterIDs))
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ctx, keys(userIDs))
	if err != nil {
		return nil, err
	}
	displayName := func(id string) string {
		if id == "" {
			return ""
		}
		if u, ok := users[id]; ok {
			return u.DisplayName()
		}
		return id
	}

	views := make([]CardView, 0, len(cards)+len(archived))
	for i := range cards {
		c := &cards[i]
		views = append(views, CardView{
			ID:                        c.ID,
			WorkshopID:                c.WorkshopID,
			WorkshopName:              workshops[c.WorkshopID].Name,
			WorkCenterID:              c.WorkCenterID,
			WorkCenterNumber:          workCenters[c.WorkCenterID].Number,
			Shift:                     c.Shift,
			ShiftName:                 entity.ShiftDisplayNames[c.Shift],
			ShortDescription:          c.ShortDescription,
			DetailedDescription:       c.DetailedDescription,
			ResolutionDurationMinutes: c.ResolutionDurationMinutes,
			Status:                    c.Status,
			CreatedBy:                 c.CreatedBy,
			CreatedByName:             displayName(c.CreatedBy),
			CreatedAt:                 c.CreatedAt,
			ExtendedBy:                c.ExtendedBy,
			ExtendedByName:            displayName(c.ExtendedBy),
			ExtendedAt:                c.ExtendedAt,
			ClosedBy:                  c.ClosedBy,
			ClosedByName:              displayName(c.ClosedBy),
			ClosedAt:                  c.ClosedAt,
		})
	}
	for i := range archived {
		a := &archived[i]
		archivedAt := a.ArchivedAt
		views = append(views, CardView{
			ID:                        a.ID,
			WorkshopID:                a.WorkshopID,
			WorkshopName:              workshops[a.WorkshopID].Name,
			WorkCenterID:              a.WorkCenterID,
			WorkCenterNumber:          workCenters[a.WorkCenterID].Number,
			Shift:                     a.Shift,
			ShiftName:                 entity.ShiftDisplayNames[a.Shift],
			ShortDescription:          a.ShortDescription,
			DetailedDescription:       a.DetailedDescription,
			ResolutionDurationMinutes: a.ResolutionDurationMinutes,
			Status:                    "ARCHIVED",
			CreatedBy:                 a.CreatedBy,
			CreatedByName:             displayName(a.CreatedBy),
			CreatedAt:                 a.CreatedAt,
			ExtendedBy:                a.ExtendedBy,
			ExtendedByName:            displayName(a.ExtendedBy),
			ExtendedAt:                a.ExtendedAt,
			ClosedBy:                  a.ClosedBy,
			ClosedByName:              displayName(a.ClosedBy),
			ClosedAt:                  a.ClosedAt,
			ArchivedBy:                a.ArchivedBy,
			ArchivedByName:            displayName(a.ArchivedBy),
			ArchivedAt:                &archivedAt,
		})
	}
	return views, nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
