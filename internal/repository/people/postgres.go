package people

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

type PgxPoolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgRepository хранилище записей в Postgres
type PgRepository struct {
	pool PgxPoolIface
}

func NewPgRepository(pool PgxPoolIface) *PgRepository {
	return &PgRepository{pool: pool}
}

const pgSchema = `
create table if not exists people (
  id          bigserial primary key,
  first_name  varchar(64),
  last_name   varchar(64),
  patronymic  varchar(64),
  age         integer check (age between 14 and 99),
  gender      varchar(16),
  education   varchar(64),
  position    varchar(128),
  experience  integer check (experience between 0 and 50),
  salary      double precision,
  phone       varchar(32),
  address     varchar(256)
);
`

func (r *PgRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *PgRepository) Insert(ctx context.Context, p dto.Person) (int64, error) {
	return InsertPerson(ctx, r.pool, p)
}

// RowQuerier реализуют и пул, и открытая транзакция.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InsertPerson пишет запись через q и возвращает её id.
func InsertPerson(ctx context.Context, q RowQuerier, p dto.Person) (int64, error) {
	query := `
insert into people
  (first_name, last_name, patronymic, age, gender, education, position, experience, salary, phone, address)
values
  (@first_name, @last_name, @patronymic, @age, @gender, @education, @position, @experience, @salary, @phone, @address)
returning id;
`
	var id int64
	if err := q.QueryRow(ctx, query, personArgs(p)).Scan(&id); err != nil {
		return 0, mapPgError("QueryRow", err)
	}

	return id, nil
}

// BulkInsert пишет все записи одной транзакцией. Ошибка в любой строке
// откатывает весь пакет.
func (r *PgRepository) BulkInsert(ctx context.Context, people []dto.Person) (int, error) {
	if len(people) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("pool.Begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows := make([][]any, 0, len(people))
	for _, p := range people {
		rows = append(rows, []any{
			p.FirstName, p.LastName, p.Patronymic, p.Age.Any(), p.Gender, p.Education,
			p.Position, p.Experience.Any(), p.Salary.Any(), p.Phone, p.Address,
		})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"people"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, mapPgError("tx.CopyFrom", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("tx.Commit: %w", err)
	}

	return int(n), nil
}

func (r *PgRepository) All(ctx context.Context) ([]dto.Person, error) {
	query := `select ` + selectColumns + ` from people order by id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *PgRepository) Page(ctx context.Context, page, perPage int) ([]dto.Person, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `select count(*) from people`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("row.Scan: %w", err)
	}

	off, ok := offset(page, perPage)
	if !ok {
		return []dto.Person{}, total, nil
	}

	query := `select ` + selectColumns + ` from people order by id limit $1 offset $2`

	rows, err := r.pool.Query(ctx, query, perPage, off)
	if err != nil {
		return nil, 0, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// DeleteAll удаляет все записи одной транзакцией и возвращает их число.
func (r *PgRepository) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("pool.Begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `delete from people`)
	if err != nil {
		return 0, fmt.Errorf("tx.Exec: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("tx.Commit: %w", err)
	}

	return tag.RowsAffected(), nil
}

func collect(rows pgx.Rows) ([]dto.Person, error) {
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

func personArgs(p dto.Person) pgx.NamedArgs {
	return pgx.NamedArgs{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"patronymic": p.Patronymic,
		"age":        p.Age.Any(),
		"gender":     p.Gender,
		"education":  p.Education,
		"position":   p.Position,
		"experience": p.Experience.Any(),
		"salary":     p.Salary.Any(),
		"phone":      p.Phone,
		"address":    p.Address,
	}
}

func mapPgError(call string, err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		switch pgerr.Code {
		case "23514", "23502", "22001", "22003":
			return fmt.Errorf("%s: %w: %s", call, dto.ErrConstraint, pgerr.Message)
		}
	}

	return fmt.Errorf("%s: %w", call, err)
}
