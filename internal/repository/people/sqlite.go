package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // sqlite без cgo

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

// SQLiteRepository встроенное хранилище записей, по умолчанию и в тестах.
type SQLiteRepository struct {
	db *sql.DB
}

const sqliteSchema = `
create table if not exists people (
  id          integer primary key autoincrement,
  first_name  text,
  last_name   text,
  patronymic  text,
  age         integer check (age between 14 and 99),
  gender      text,
  education   text,
  position    text,
  experience  integer check (experience between 0 and 50),
  salary      real,
  phone       text,
  address     text
);
`

// OpenSQLite открывает (при необходимости создаёт) базу по пути path. Для
// ":memory:" пул ограничен одним соединением, чтобы все видели одни данные.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path == "" {
		path = "people.db"
	}

	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("create dirs: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	repo := NewSQLiteRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return repo, nil
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const sqliteInsert = `
insert into people
  (first_name, last_name, patronymic, age, gender, education, position, experience, salary, phone, address)
values
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOne(ctx context.Context, ex execer, p dto.Person) (int64, error) {
	res, err := ex.ExecContext(ctx, sqliteInsert,
		p.FirstName, p.LastName, p.Patronymic, p.Age.Any(), p.Gender, p.Education,
		p.Position, p.Experience.Any(), p.Salary.Any(), p.Phone, p.Address,
	)
	if err != nil {
		return 0, mapSQLiteError("ExecContext", err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepository) Insert(ctx context.Context, p dto.Person) (int64, error) {
	return insertOne(ctx, r.db, p)
}

// BulkInsert пишет все записи одной транзакцией. Ошибка в любой строке
// откатывает предыдущие.
func (r *SQLiteRepository) BulkInsert(ctx context.Context, people []dto.Person) (n int, retErr error) {
	if len(people) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("db.BeginTx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for i, p := range people {
		if _, err := insertOne(ctx, tx, p); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("tx.Commit: %w", err)
	}

	return len(people), nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]dto.Person, error) {
	rows, err := r.db.QueryContext(ctx, `select `+selectColumns+` from people order by id`)
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectSQL(rows)
}

func (r *SQLiteRepository) Page(ctx context.Context, page, perPage int) ([]dto.Person, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `select count(*) from people`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("row.Scan: %w", err)
	}

	off, ok := offset(page, perPage)
	if !ok {
		return []dto.Person{}, total, nil
	}

	rows, err := r.db.QueryContext(ctx, `select `+selectColumns+` from people order by id limit ? offset ?`, perPage, off)
	if err != nil {
		return nil, 0, fmt.Errorf("db.QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out, err := collectSQL(rows)
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) (n int64, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("db.BeginTx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `delete from people`)
	if err != nil {
		return 0, fmt.Errorf("tx.ExecContext: %w", err)
	}

	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("res.RowsAffected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("tx.Commit: %w", err)
	}

	return n, nil
}

func collectSQL(rows *sql.Rows) ([]dto.Person, error) {
	var out []dto.Person
	for rows.Next() {
		var p dto.Person
		if err := rows.Scan(scanTargets(&p)...); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return out, nil
}

func mapSQLiteError(call string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "CHECK constraint failed") || strings.Contains(msg, "NOT NULL constraint failed") {
		return fmt.Errorf("%s: %w: %s", call, dto.ErrConstraint, msg)
	}

	return fmt.Errorf("%s: %w", call, err)
}
