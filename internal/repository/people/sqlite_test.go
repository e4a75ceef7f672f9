package people

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Artexxx/HR-People-Analytics/internal/dto"
)

func newMemoryRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func person(i int) dto.Person {
	return dto.Person{
		FirstName:  fmt.Sprintf("Имя%d", i),
		LastName:   fmt.Sprintf("Фамилия%d", i),
		Age:        dto.Some(20 + i%40),
		Gender:     dto.StrPtr("Женщина"),
		Position:   dto.StrPtr("Аналитик"),
		Experience: dto.Some(i % 30),
		Salary:     dto.Some(50000 + float64(i)*100),
	}
}

func TestSQLite_InsertAndAllPreservesAbsence(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	id, err := repo.Insert(ctx, dto.Person{FirstName: "Анна", LastName: "Смирнова", Salary: dto.Some(0.0)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, "Анна", got.FirstName)
	assert.False(t, got.Age.Valid)
	assert.False(t, got.Experience.Valid)
	assert.Nil(t, got.Patronymic)
	assert.Equal(t, dto.Some(0.0), got.Salary)
}

func TestSQLite_BulkInsertIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	batch := []dto.Person{person(1), person(2), person(3)}
	batch[2].Age = dto.Some(150) // violates the age check on the last row

	_, err := repo.BulkInsert(ctx, batch)
	require.Error(t, err)
	assert.ErrorIs(t, err, dto.ErrConstraint)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	batch[2].Age = dto.Some(40)
	n, err := repo.BulkInsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestSQLite_Paging(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	batch := make([]dto.Person, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, person(i))
	}
	_, err := repo.BulkInsert(ctx, batch)
	require.NoError(t, err)

	first, total, err := repo.Page(ctx, 1, PerPage)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, first, 20)
	assert.Equal(t, int64(1), first[0].ID)

	second, _, err := repo.Page(ctx, 2, PerPage)
	require.NoError(t, err)
	assert.Len(t, second, 5)
	assert.Equal(t, int64(21), second[0].ID)

	third, _, err := repo.Page(ctx, 3, PerPage)
	require.NoError(t, err)
	assert.Empty(t, third)

	far, total, err := repo.Page(ctx, 500000000000000001, PerPage)
	require.NoError(t, err)
	assert.Empty(t, far)
	assert.Equal(t, 25, total)
}

func TestOffset(t *testing.T) {
	off, ok := offset(0, PerPage)
	assert.True(t, ok)
	assert.Zero(t, off)

	off, ok = offset(3, PerPage)
	assert.True(t, ok)
	assert.Equal(t, 40, off)

	_, ok = offset(math.MaxInt, PerPage)
	assert.False(t, ok)
}

func TestSQLite_DeleteAllReportsCount(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	_, err := repo.BulkInsert(ctx, []dto.Person{person(1), person(2), person(3), person(4)})
	require.NoError(t, err)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	n, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLite_DeleteAllRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`delete from people`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	n, err := repo.DeleteAll(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_BulkInsertRollsBackOnCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`insert into people`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`insert into people`).WillReturnError(errors.New("CHECK constraint failed: age"))
	mock.ExpectRollback()

	_, err = repo.BulkInsert(context.Background(), []dto.Person{person(1), person(2)})
	require.Error(t, err)
	assert.ErrorIs(t, err, dto.ErrConstraint)
	assert.Contains(t, err.Error(), "row 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}
