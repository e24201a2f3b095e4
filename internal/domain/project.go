package domain

import (
	"strings"
	"time"
)

// Project represents a qualification project shown as one board.
type Project struct {
	ID          string
	Slug        string
	Title       string
	DueAt       *time.Time
	ProgressPct int
	Members     []Member
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectInput holds the raw values accepted by NewProject.
type ProjectInput struct {
	ID          string
	Title       string
	DueAt       *time.Time
	ProgressPct int
	Members     []Member
}

// NewProject constructs a new value for this package.
func NewProject(in ProjectInput, now time.Time) (Project, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	if in.ID == "" {
		return Project{}, ErrInvalidID
	}
	if in.Title == "" {
		return Project{}, ErrInvalidTitle
	}
	if in.ProgressPct < 0 || in.ProgressPct > 100 {
		return Project{}, ErrInvalidProgress
	}
	members, err := normalizeMembers(in.Members)
	if err != nil {
		return Project{}, err
	}
	return Project{
		ID:          in.ID,
		Slug:        normalizeSlug(in.Title),
		Title:       in.Title,
		DueAt:       normalizeDueAt(in.DueAt),
		ProgressPct: in.ProgressPct,
		Members:     members,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// SetProgress updates the completion percentage.
func (p *Project) SetProgress(pct int, now time.Time) error {
	if pct < 0 || pct > 100 {
		return ErrInvalidProgress
	}
	p.ProgressPct = pct
	p.UpdatedAt = now.UTC()
	return nil
}

// normalizeSlug normalizes slug.
func normalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	prevDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
