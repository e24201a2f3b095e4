// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/phaseboard/internal/board"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrServiceUnavailable reports a transport wired without a backing service.
var ErrServiceUnavailable = errors.New("service unavailable")

// Member is the transport shape of one project or task member.
type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Initials  string `json:"initials"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Project is the transport shape of one project header.
type Project struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	DueDate     string     `json:"due_date,omitempty"`
	ProgressPct int        `json:"progress_pct"`
	Members     []Member   `json:"members"`
}

// BoardRequest asks for one page of a project's board.
type BoardRequest struct {
	ProjectID string
	// Width is the container width in MinColumnWidth units; zero means one column per page.
	Width int
	// Page is an optional host-controlled page; nil keeps the first page.
	Page *int
	// MinColumnWidth overrides the configured column threshold when positive.
	MinColumnWidth int
}

// Card is the transport shape of one task card.
type Card struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Stage         string   `json:"stage"`
	Position      int      `json:"position"`
	DueDate       string   `json:"due_date,omitempty"`
	Label         string   `json:"label"`
	LabelDaysLeft int      `json:"label_days_left"`
	Warnings      int      `json:"warnings"`
	Comments      int      `json:"comments"`
	Attachments   int      `json:"attachments"`
	Assignees     []Member `json:"assignees"`
}

// Column is the transport shape of one rendered board column.
type Column struct {
	Stage     string `json:"stage"`
	Count     int    `json:"count"`
	Icon      string `json:"icon"`
	IconGlyph string `json:"icon_glyph"`
	LabelID   string `json:"label_id"`
	EmptyText string `json:"empty_text,omitempty"`
	Cards     []Card `json:"cards"`
}

// BoardPage is one page of a board as computed by the board view.
type BoardPage struct {
	Project        Project        `json:"project"`
	Page           board.PageInfo `json:"page"`
	Nav            PageNavigation `json:"nav"`
	ColumnsPerPage int            `json:"columns_per_page"`
	Columns        []Column       `json:"columns"`
	Unplaced       int            `json:"unplaced"`
}

// PageNavigation reports which paging controls are enabled.
type PageNavigation struct {
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// ReorderRequest commits a new order for one stage.
type ReorderRequest struct {
	ProjectID string   `json:"project_id"`
	Stage     string   `json:"stage"`
	TaskIDs   []string `json:"task_ids"`
}

// ReorderResult echoes a persisted reorder.
type ReorderResult struct {
	ProjectID string   `json:"project_id"`
	Stage     string   `json:"stage"`
	TaskIDs   []string `json:"task_ids"`
}

// ProjectService lists projects for transport callers.
type ProjectService interface {
	ListProjects(context.Context) ([]Project, error)
}

// BoardReader computes board pages.
type BoardReader interface {
	Board(context.Context, BoardRequest) (BoardPage, error)
}

// StageReorderer persists stage reorders.
type StageReorderer interface {
	ReorderStage(context.Context, ReorderRequest) (ReorderResult, error)
}

// BoardService is the full surface served by HTTP and MCP adapters.
type BoardService interface {
	ProjectService
	BoardReader
	StageReorderer
}
