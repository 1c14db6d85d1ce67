package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/researchtrack-backend/internal/domain"
)

func SeedProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, title string) *types.Program {
	tb.Helper()
	p := &types.Program{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		University:  "MIT",
		ProgramType: "PhD",
	}
	if err := tx.WithContext(ctx).Omit("Deadlines", "People", "Links").Create(p).Error; err != nil {
		tb.Fatalf("seed program: %v", err)
	}
	return p
}

func SeedDeadline(tb testing.TB, ctx context.Context, tx *gorm.DB, programID uuid.UUID, title string, date time.Time) *types.Deadline {
	tb.Helper()
	d := &types.Deadline{
		ID:           uuid.New(),
		ProgramID:    programID,
		Title:        title,
		Date:         date.UTC(),
		DeadlineType: "application",
	}
	if err := tx.WithContext(ctx).Omit("Program").Create(d).Error; err != nil {
		tb.Fatalf("seed deadline: %v", err)
	}
	return d
}

func SeedPerson(tb testing.TB, ctx context.Context, tx *gorm.DB, programID uuid.UUID, name string) *types.Person {
	tb.Helper()
	p := &types.Person{
		ID:        uuid.New(),
		ProgramID: programID,
		Name:      name,
		Role:      "professor",
	}
	if err := tx.WithContext(ctx).Omit("Program").Create(p).Error; err != nil {
		tb.Fatalf("seed person: %v", err)
	}
	return p
}

func SeedLink(tb testing.TB, ctx context.Context, tx *gorm.DB, programID uuid.UUID, title, url string) *types.Link {
	tb.Helper()
	l := &types.Link{
		ID:        uuid.New(),
		ProgramID: programID,
		Title:     title,
		URL:       url,
		LinkType:  "website",
	}
	if err := tx.WithContext(ctx).Omit("Program").Create(l).Error; err != nil {
		tb.Fatalf("seed link: %v", err)
	}
	return l
}
