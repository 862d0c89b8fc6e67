package dbrepository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/pkg/logging"
)

type execCall struct {
	query string
	args  []any
}

type fakeStorage struct {
	values   map[string]string
	revision int64
	execs    []execCall
	err      error
}

func (s *fakeStorage) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, s.err
}

func (s *fakeStorage) QueryValue(_ context.Context, query string, args []any, dest []any) error {
	if s.err != nil {
		return s.err
	}
	switch query {
	case selectStateQuery:
		blob, ok := s.values[args[0].(string)]
		if !ok {
			return pgx.ErrNoRows
		}
		*dest[0].(*string) = blob
	case upsertStateQuery:
		s.revision++
		s.values[args[0].(string)] = args[1].(string)
		*dest[0].(*int64) = s.revision
	}
	return nil
}

type fakeTransactions struct {
	calls int
}

func (tm *fakeTransactions) DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	tm.calls++
	return f(ctx)
}

func TestLoadMissingState(t *testing.T) {
	repo := New(&fakeStorage{values: map[string]string{}}, &fakeTransactions{}, logging.NewNop())

	_, err := repo.Load(context.Background(), "scope")
	assert.ErrorIs(t, err, data.ErrStateNotFound)
}

func TestSaveWritesHistoryInOneTransaction(t *testing.T) {
	storage := &fakeStorage{values: map[string]string{}}
	transactions := &fakeTransactions{}
	repo := New(storage, transactions, logging.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "scope", []byte(`{"orders":{}}`)))
	require.NoError(t, repo.Save(ctx, "scope", []byte(`{"orders":{},"total":0}`)))

	assert.Equal(t, 2, transactions.calls)
	require.Len(t, storage.execs, 2)
	assert.Equal(t, insertStateHistoryQuery, storage.execs[1].query)
	assert.Equal(t, []any{"scope", int64(2), `{"orders":{},"total":0}`}, storage.execs[1].args)

	blob, err := repo.Load(ctx, "scope")
	require.NoError(t, err)
	assert.Equal(t, `{"orders":{},"total":0}`, string(blob))
}

func TestStorageErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	repo := New(&fakeStorage{err: boom}, &fakeTransactions{}, logging.NewNop())
	ctx := context.Background()

	_, err := repo.Load(ctx, "scope")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, repo.Save(ctx, "scope", []byte("{}")), boom)
	assert.ErrorIs(t, repo.Clear(ctx, "scope"), boom)
}
