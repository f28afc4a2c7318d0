//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idscan/internal/document"
	"idscan/internal/result"
	"idscan/internal/result/store/postgres"
	"idscan/pkg/testutil/containers"
)

type stubPersister struct {
	err error
}

func (p stubPersister) Persist(_ context.Context, r *document.Result) (result.Record, error) {
	if p.err != nil {
		return result.Record{}, p.err
	}
	return result.Record{
		DocumentID:     r.DocumentID,
		Stamp:          r.Stamp,
		Type:           r.Type,
		Name:           r.DocumentID + "_name",
		TranscriptPath: "/out/" + r.DocumentID + ".txt",
		CapturedAt:     r.CapturedAt,
	}, nil
}

type IndexedSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Indexed
}

func TestIndexedSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(IndexedSuite))
}

func (s *IndexedSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = postgres.New(s.postgres.DB, stubPersister{})
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *IndexedSuite) TearDownSuite() {
	s.postgres.Terminate()
}

func (s *IndexedSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "scan_results"))
}

func newResult(documentID string, at time.Time) *document.Result {
	return &document.Result{
		Stamp:      uuid.NewString(),
		DocumentID: documentID,
		Type:       document.TypePassport,
		CapturedAt: at,
	}
}

func (s *IndexedSuite) TestPersistIndexesRecord() {
	ctx := context.Background()
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, id := range []string{"M1", "M2", "M1"} {
		_, err := s.store.Persist(ctx, newResult(id, base.Add(time.Duration(i)*time.Minute)))
		s.Require().NoError(err)
	}

	all, err := s.store.Recent(ctx, "", 10)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.True(all[0].CapturedAt.After(all[2].CapturedAt), "newest first")

	m1, err := s.store.Recent(ctx, "M1", 10)
	s.Require().NoError(err)
	s.Len(m1, 2)
	for _, rec := range m1 {
		s.Equal(document.TypePassport, rec.Type)
	}
}

func (s *IndexedSuite) TestPersistIsIdempotentPerStamp() {
	ctx := context.Background()
	r := newResult("M3", time.Now().UTC())

	_, err := s.store.Persist(ctx, r)
	s.Require().NoError(err)
	_, err = s.store.Persist(ctx, r)
	s.Require().NoError(err)

	recs, err := s.store.Recent(ctx, "M3", 10)
	s.Require().NoError(err)
	s.Len(recs, 1)
}

func (s *IndexedSuite) TestWrappedFailureIsNotIndexed() {
	ctx := context.Background()
	failing := postgres.New(s.postgres.DB, stubPersister{err: errors.New("disk full")})

	_, err := failing.Persist(ctx, newResult("M4", time.Now().UTC()))
	s.Error(err)

	recs, err := s.store.Recent(ctx, "M4", 10)
	s.Require().NoError(err)
	s.Empty(recs)
}

func (s *IndexedSuite) TestOpen() {
	db, err := postgres.Open(context.Background(), s.postgres.DSN)
	s.Require().NoError(err)
	s.NoError(db.Close())
}
