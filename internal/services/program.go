package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/data/repos"
	types "github.com/yungbote/researchtrack-backend/internal/domain"
	"github.com/yungbote/researchtrack-backend/internal/domain/programs"
	pkgerrors "github.com/yungbote/researchtrack-backend/internal/pkg/errors"
	"github.com/yungbote/researchtrack-backend/internal/platform/ctxutil"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

// CalendarEntry is a deadline with its category resolved for display.
type CalendarEntry struct {
	*types.Deadline
	Kind  types.DeadlineKind `json:"kind"`
	Color string             `json:"color"`
}

type ContactView struct {
	*types.Person
	Kind  types.PersonRole `json:"kind"`
	Color string           `json:"color"`
}

type LinkView struct {
	*types.Link
	Kind  types.LinkKind `json:"kind"`
	Color string         `json:"color"`
}

// ProgramView is a timeline entry; its child slices replace the embedded program's.
type ProgramView struct {
	*types.Program
	Kind      types.ProgramKind `json:"kind"`
	Color     string            `json:"color"`
	Deadlines []CalendarEntry   `json:"deadlines"`
	People    []ContactView     `json:"people"`
	Links     []LinkView        `json:"links"`
}

type OverviewCounts struct {
	Programs  int `json:"programs"`
	Deadlines int `json:"deadlines"`
	Upcoming  int `json:"upcoming"`
	People    int `json:"people"`
	Links     int `json:"links"`
}

type Overview struct {
	Programs  []ProgramView   `json:"programs"`
	Deadlines []CalendarEntry `json:"deadlines"`
	People    []ContactView   `json:"people"`
	Links     []LinkView      `json:"links"`
	Counts    OverviewCounts  `json:"counts"`
}

// ProgramService is the read path behind the calendar, timeline and contacts views,
// plus the two mutations those views perform. Every call acts for ctxutil.UserID(ctx).
type ProgramService interface {
	ListPrograms(ctx context.Context) ([]ProgramView, error)
	ListDeadlines(ctx context.Context) ([]CalendarEntry, error)
	ListPeople(ctx context.Context) ([]ContactView, error)
	ListLinks(ctx context.Context) ([]LinkView, error)
	Overview(ctx context.Context) (*Overview, error)
	SetDeadlineCompleted(ctx context.Context, deadlineID uuid.UUID, completed bool) (*CalendarEntry, error)
	DeleteProgram(ctx context.Context, programID uuid.UUID) error
}

type programService struct {
	db        *gorm.DB
	log       *logger.Logger
	programs  repos.ProgramRepo
	deadlines repos.DeadlineRepo
	people    repos.PersonRepo
	links     repos.LinkRepo
	now       func() time.Time
}

func NewProgramService(
	db *gorm.DB,
	baseLog *logger.Logger,
	programRepo repos.ProgramRepo,
	deadlineRepo repos.DeadlineRepo,
	personRepo repos.PersonRepo,
	linkRepo repos.LinkRepo,
) ProgramService {
	serviceLog := baseLog.With("service", "ProgramService")
	return &programService{
		db:        db,
		log:       serviceLog,
		programs:  programRepo,
		deadlines: deadlineRepo,
		people:    personRepo,
		links:     linkRepo,
		now:       time.Now,
	}
}

func requestUser(ctx context.Context) (string, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return "", fmt.Errorf("missing user id: %w", pkgerrors.ErrInvalidArgument)
	}
	return userID, nil
}

func (s *programService) ListPrograms(ctx context.Context) ([]ProgramView, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.programs.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	out := make([]ProgramView, 0, len(rows))
	for _, p := range rows {
		out = append(out, programView(p))
	}
	return out, nil
}

func (s *programService) ListDeadlines(ctx context.Context) ([]CalendarEntry, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.deadlines.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	out := make([]CalendarEntry, 0, len(rows))
	for _, d := range rows {
		out = append(out, calendarEntry(d))
	}
	return out, nil
}

func (s *programService) ListPeople(ctx context.Context) ([]ContactView, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.people.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	out := make([]ContactView, 0, len(rows))
	for _, p := range rows {
		out = append(out, contactView(p))
	}
	return out, nil
}

func (s *programService) ListLinks(ctx context.Context) ([]LinkView, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.links.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	out := make([]LinkView, 0, len(rows))
	for _, l := range rows {
		out = append(out, linkView(l))
	}
	return out, nil
}

// Overview loads the four collections concurrently.
func (s *programService) Overview(ctx context.Context) (*Overview, error) {
	if _, err := requestUser(ctx); err != nil {
		return nil, err
	}
	out := &Overview{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.ListPrograms(gctx)
		out.Programs = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.ListDeadlines(gctx)
		out.Deadlines = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.ListPeople(gctx)
		out.People = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.ListLinks(gctx)
		out.Links = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	out.Counts = OverviewCounts{
		Programs:  len(out.Programs),
		Deadlines: len(out.Deadlines),
		People:    len(out.People),
		Links:     len(out.Links),
	}
	for _, d := range out.Deadlines {
		if !d.Completed && !d.Date.Before(now) {
			out.Counts.Upcoming++
		}
	}
	return out, nil
}

func (s *programService) SetDeadlineCompleted(ctx context.Context, deadlineID uuid.UUID, completed bool) (*CalendarEntry, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.deadlines.SetCompleted(ctx, nil, userID, deadlineID, completed)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Deadline completion set", "user_id", userID, "deadline_id", deadlineID.String(), "completed", completed)
	entry := calendarEntry(d)
	return &entry, nil
}

func (s *programService) DeleteProgram(ctx context.Context, programID uuid.UUID) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	n, err := s.programs.DeleteByIDs(ctx, nil, userID, []uuid.UUID{programID})
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if n == 0 {
		return pkgerrors.ErrNotFound
	}
	s.log.Info("Program deleted", "user_id", userID, "program_id", programID.String())
	return nil
}

func calendarEntry(d *types.Deadline) CalendarEntry {
	kind := programs.ParseDeadlineKind(d.DeadlineType)
	return CalendarEntry{Deadline: d, Kind: kind, Color: kind.Style()}
}

func contactView(p *types.Person) ContactView {
	kind := programs.ParsePersonRole(p.Role)
	return ContactView{Person: p, Kind: kind, Color: kind.Style()}
}

func linkView(l *types.Link) LinkView {
	kind := programs.ParseLinkKind(l.LinkType)
	return LinkView{Link: l, Kind: kind, Color: kind.Style()}
}

func programView(p *types.Program) ProgramView {
	kind := programs.ParseProgramKind(p.ProgramType)
	v := ProgramView{
		Program:   p,
		Kind:      kind,
		Color:     kind.Style(),
		Deadlines: make([]CalendarEntry, 0, len(p.Deadlines)),
		People:    make([]ContactView, 0, len(p.People)),
		Links:     make([]LinkView, 0, len(p.Links)),
	}
	for _, d := range p.Deadlines {
		v.Deadlines = append(v.Deadlines, calendarEntry(d))
	}
	for _, n := range p.People {
		v.People = append(v.People, contactView(n))
	}
	for _, l := range p.Links {
		v.Links = append(v.Links, linkView(l))
	}
	return v
}
