package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hylla/phaseboard/internal/app"
	"github.com/hylla/phaseboard/internal/domain"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository implements app.Repository on a sqlite database.
type Repository struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:phaseboard-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL,
			title TEXT NOT NULL,
			due_at TEXT,
			progress_pct INTEGER NOT NULL DEFAULT 0,
			members_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			stage TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			due_at TEXT,
			warnings INTEGER NOT NULL DEFAULT 0,
			comments INTEGER NOT NULL DEFAULT 0,
			attachments INTEGER NOT NULL DEFAULT 0,
			assignees_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project_position ON tasks(project_id, position, created_at);`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT '',
			task_ids_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_project_created ON change_events(project_id, created_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	// Card label columns were added after the first schema.
	alters := []string{
		`ALTER TABLE tasks ADD COLUMN label TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE tasks ADD COLUMN label_days_left INTEGER NOT NULL DEFAULT 0`,
	}
	for _, stmt := range alters {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil && !isDuplicateColumnErr(err) {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateProject creates project.
func (r *Repository) CreateProject(ctx context.Context, p domain.Project) error {
	membersJSON, err := json.Marshal(nonNilMembers(p.Members))
	if err != nil {
		return fmt.Errorf("encode project members: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects(id, slug, title, due_at, progress_pct, members_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Slug, p.Title, nullableTS(p.DueAt), p.ProgressPct, string(membersJSON), ts(p.CreatedAt), ts(p.UpdatedAt))
	return err
}

// UpdateProject updates state for the requested operation.
func (r *Repository) UpdateProject(ctx context.Context, p domain.Project) error {
	membersJSON, err := json.Marshal(nonNilMembers(p.Members))
	if err != nil {
		return fmt.Errorf("encode project members: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET slug = ?, title = ?, due_at = ?, progress_pct = ?, members_json = ?, updated_at = ?
		WHERE id = ?
	`, p.Slug, p.Title, nullableTS(p.DueAt), p.ProgressPct, string(membersJSON), ts(p.UpdatedAt), p.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetProject returns project.
func (r *Repository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, slug, title, due_at, progress_pct, members_json, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// ListProjects lists projects in creation order.
func (r *Repository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slug, title, due_at, progress_pct, members_json, created_at, updated_at
		FROM projects
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateTask inserts a task and records a create event.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) (err error) {
	assigneesJSON, err := json.Marshal(nonNilMembers(t.Assignees))
	if err != nil {
		return fmt.Errorf("encode task assignees: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks(
			id, project_id, stage, position, title, body, due_at, warnings, comments, attachments,
			assignees_json, label, label_days_left, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.ProjectID, string(t.Stage), t.Position, t.Title, t.Body, nullableTS(t.DueAt),
		t.Warnings, t.Comments, t.Attachments, string(assigneesJSON), string(t.Label), t.LabelDaysLeft,
		ts(t.CreatedAt), ts(t.UpdatedAt),
	)
	if err != nil {
		return err
	}
	err = insertChangeEvent(ctx, tx, domain.ChangeEvent{
		ProjectID:  t.ProjectID,
		Operation:  domain.ChangeOperationCreate,
		Stage:      t.Stage,
		TaskIDs:    []string{t.ID},
		OccurredAt: t.CreatedAt,
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTask replaces every mutable task column.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	assigneesJSON, err := json.Marshal(nonNilMembers(t.Assignees))
	if err != nil {
		return fmt.Errorf("encode task assignees: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET project_id = ?, stage = ?, position = ?, title = ?, body = ?, due_at = ?, warnings = ?, comments = ?,
			attachments = ?, assignees_json = ?, label = ?, label_days_left = ?, updated_at = ?
		WHERE id = ?
	`,
		t.ProjectID, string(t.Stage), t.Position, t.Title, t.Body, nullableTS(t.DueAt), t.Warnings, t.Comments,
		t.Attachments, string(assigneesJSON), string(t.Label), t.LabelDaysLeft, ts(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListTasks lists project tasks by position, creation time and id.
func (r *Repository) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project_id = ?
		ORDER BY position ASC, created_at ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReorderTasks writes positions 0..n-1 for ids and logs the reorder, all in one transaction.
func (r *Repository) ReorderTasks(ctx context.Context, projectID string, stage domain.StageKey, ids []string, now time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, id := range ids {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `
			UPDATE tasks SET position = ?, updated_at = ?
			WHERE id = ? AND project_id = ?
		`, i, ts(now), id, projectID)
		if err != nil {
			return err
		}
		if err = translateNoRows(res); err != nil {
			return fmt.Errorf("task %q: %w", id, err)
		}
	}
	err = insertChangeEvent(ctx, tx, domain.ChangeEvent{
		ProjectID:  projectID,
		Operation:  domain.ChangeOperationReorder,
		Stage:      stage,
		TaskIDs:    ids,
		OccurredAt: now,
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ListProjectChangeEvents returns the newest change events for a project.
func (r *Repository) ListProjectChangeEvents(ctx context.Context, projectID string, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, operation, stage, task_ids_json, created_at
		FROM change_events
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event      domain.ChangeEvent
			opRaw      string
			stageRaw   string
			idsRaw     string
			createdRaw string
		)
		if err := rows.Scan(&event.ID, &event.ProjectID, &opRaw, &stageRaw, &idsRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = domain.ChangeOperation(opRaw)
		event.Stage = domain.StageKey(stageRaw)
		event.OccurredAt = parseTS(createdRaw)
		if err := decodeJSONColumn(idsRaw, "[]", &event.TaskIDs); err != nil {
			return nil, fmt.Errorf("decode change_events.task_ids_json: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// execerContext represents a write-only DB contract used by DB and Tx implementations.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// insertChangeEvent inserts a change-event ledger record.
func insertChangeEvent(ctx context.Context, execer execerContext, event domain.ChangeEvent) error {
	idsJSON, err := json.Marshal(nonNilStrings(event.TaskIDs))
	if err != nil {
		return fmt.Errorf("encode change event task ids: %w", err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	_, err = execer.ExecContext(ctx, `
		INSERT INTO change_events(project_id, operation, stage, task_ids_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.ProjectID, string(event.Operation), string(event.Stage), string(idsJSON), ts(occurred))
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

const taskColumns = `id, project_id, stage, position, title, body, due_at, warnings, comments, attachments,
	assignees_json, label, label_days_left, created_at, updated_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (domain.Project, error) {
	var (
		p          domain.Project
		dueRaw     sql.NullString
		membersRaw string
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&p.ID, &p.Slug, &p.Title, &dueRaw, &p.ProgressPct, &membersRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Project{}, app.ErrNotFound
		}
		return domain.Project{}, err
	}
	if err := decodeJSONColumn(membersRaw, "[]", &p.Members); err != nil {
		return domain.Project{}, fmt.Errorf("decode project members_json: %w", err)
	}
	p.DueAt = parseNullTS(dueRaw)
	p.CreatedAt = parseTS(createdRaw)
	p.UpdatedAt = parseTS(updatedRaw)
	return p, nil
}

func scanTask(s scanner) (domain.Task, error) {
	var (
		t            domain.Task
		stageRaw     string
		labelRaw     string
		dueRaw       sql.NullString
		assigneesRaw string
		createdRaw   string
		updatedRaw   string
	)
	if err := s.Scan(
		&t.ID, &t.ProjectID, &stageRaw, &t.Position, &t.Title, &t.Body, &dueRaw, &t.Warnings, &t.Comments, &t.Attachments,
		&assigneesRaw, &labelRaw, &t.LabelDaysLeft, &createdRaw, &updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	if err := decodeJSONColumn(assigneesRaw, "[]", &t.Assignees); err != nil {
		return domain.Task{}, fmt.Errorf("decode tasks.assignees_json: %w", err)
	}
	t.Stage = domain.StageKey(stageRaw)
	t.Label = domain.Label(labelRaw)
	t.DueAt = parseNullTS(dueRaw)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

func decodeJSONColumn(raw, fallback string, dst any) error {
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}
	return json.Unmarshal([]byte(raw), dst)
}

func nonNilMembers(in []domain.Member) []domain.Member {
	if in == nil {
		return []domain.Member{}
	}
	return in
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}

// isDuplicateColumnErr reports whether the expected condition is satisfied.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}

var _ app.Repository = (*Repository)(nil)
