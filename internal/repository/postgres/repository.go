package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"notes-store/internal/model"
	"notes-store/internal/repository"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const tableNotes = "notes"

// schema создает таблицу, если её еще нет. seq задает порядок вставки
const schema = `
CREATE TABLE IF NOT EXISTS notes (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var _ repository.NoteRepository = (*Repository)(nil)

// Repository хранит заметки в PostgreSQL, по строке на заметку
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open подключается к базе по DSN
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.PingContext: %w", err)
	}
	return db, nil
}

// NewRepository создает репозиторий поверх открытого подключения
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// EnsureSchema создает таблицу notes, если её нет
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return repository.NewStorageError("schema", err)
	}
	return nil
}

// List возвращает все заметки в порядке вставки, без поля Body
func (r *Repository) List(ctx context.Context) ([]model.NoteSummary, error) {
	query, args, err := listQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repository.NewStorageError("list", err)
	}
	defer rows.Close()

	summaries := []model.NoteSummary{}
	for rows.Next() {
		var s model.NoteSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, repository.NewStorageError("list", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.NewStorageError("list", err)
	}

	return summaries, nil
}

// GetByID возвращает заметку по её ID
func (r *Repository) GetByID(ctx context.Context, id string) (model.Note, bool, error) {
	query, args, err := getQuery(id).ToSql()
	if err != nil {
		return model.Note{}, false, fmt.Errorf("failed to build query: %w", err)
	}

	note, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, false, nil
	}
	if err != nil {
		return model.Note{}, false, repository.NewStorageError("get", err)
	}
	return note, true, nil
}

// Create вставляет новую заметку
func (r *Repository) Create(ctx context.Context, in model.NoteInput) (model.Note, error) {
	in = in.WithDefaults()
	now := r.timestamp()
	note := model.Note{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query, args, err := insertQuery(note).ToSql()
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return model.Note{}, repository.NewStorageError("create", err)
	}

	return note, nil
}

// Update обновляет переданные поля и UpdatedAt одной командой UPDATE ... RETURNING
func (r *Repository) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, bool, error) {
	query, args, err := updateQuery(id, patch, r.timestamp()).ToSql()
	if err != nil {
		return model.Note{}, false, fmt.Errorf("failed to build query: %w", err)
	}

	note, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, false, nil
	}
	if err != nil {
		return model.Note{}, false, repository.NewStorageError("update", err)
	}
	return note, true, nil
}

// DeleteMany удаляет заметки по списку ID
func (r *Repository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := deleteQuery(ids).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return repository.NewStorageError("delete", err)
	}
	return nil
}

// timestamp усечено до микросекунд, точности TIMESTAMPTZ
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func listQuery() squirrel.SelectBuilder {
	return psql.Select("id", "title", "created_at", "updated_at").
		From(tableNotes).
		OrderBy("seq")
}

func getQuery(id string) squirrel.SelectBuilder {
	return psql.Select("id", "title", "body", "created_at", "updated_at").
		From(tableNotes).
		Where(squirrel.Eq{"id": id})
}

func insertQuery(n model.Note) squirrel.InsertBuilder {
	return psql.Insert(tableNotes).
		Columns("id", "title", "body", "created_at", "updated_at").
		Values(n.ID, n.Title, n.Body, n.CreatedAt, n.UpdatedAt)
}

// updateQuery сдвигает updated_at строго вперед, даже если часы не ушли дальше сохраненного значения
func updateQuery(id string, patch model.NotePatch, now time.Time) squirrel.UpdateBuilder {
	q := psql.Update(tableNotes).
		Set("updated_at", squirrel.Expr("GREATEST(?::timestamptz, updated_at + interval '1 microsecond')", now))
	if patch.Title != nil {
		q = q.Set("title", *patch.Title)
	}
	if patch.Body != nil {
		q = q.Set("body", *patch.Body)
	}
	return q.Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, title, body, created_at, updated_at")
}

func deleteQuery(ids []string) squirrel.DeleteBuilder {
	return psql.Delete(tableNotes).Where(squirrel.Eq{"id": ids})
}

func scanNote(row *sql.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return model.Note{}, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return n, nil
}
