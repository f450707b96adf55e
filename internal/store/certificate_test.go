package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waypoint/internal/model"
)

func testCertificate(id, user, track, code string, at time.Time) model.Certificate {
	return model.Certificate{ID: id, UserID: user, TrackID: track, Code: code, IssuedAt: at}
}

func TestInsertCertificateUnique(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cert := testCertificate("c1", "u1", "track-residential", "CERT-abc-00000001", testTime)
	require.NoError(t, s.InsertCertificateUnique(ctx, cert))

	got, err := s.FindCertificate(ctx, "u1", "track-residential")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "CERT-abc-00000001", got.Code)
	assert.True(t, testTime.Equal(got.IssuedAt))
}

func TestInsertCertificateUnique_ConflictOnUserTrack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCertificateUnique(ctx, testCertificate("c1", "u1", "t1", "CODE-1", testTime)))

	err := s.InsertCertificateUnique(ctx, testCertificate("c2", "u1", "t1", "CODE-2", testTime))
	require.ErrorIs(t, err, model.ErrConflict)

	got, err := s.FindCertificate(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "CODE-1", got.Code, "first insert wins")
}

func TestInsertCertificateUnique_ConflictOnCode(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCertificateUnique(ctx, testCertificate("c1", "u1", "t1", "CODE-1", testTime)))

	err := s.InsertCertificateUnique(ctx, testCertificate("c2", "u2", "t1", "CODE-1", testTime))
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestFindCertificate_Missing(t *testing.T) {
	s := createTestStore(t)

	got, err := s.FindCertificate(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	byCode, err := s.FindCertificateByCode(context.Background(), "CERT-nope")
	require.NoError(t, err)
	assert.Nil(t, byCode)
}

func TestFindCertificateByCode(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertCertificateUnique(ctx, testCertificate("c1", "u1", "t1", "CERT-m5d4ruo0-ABCD1234", testTime)))

	got, err := s.FindCertificateByCode(ctx, "CERT-m5d4ruo0-ABCD1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
}

func TestListCertificates_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Sub-second offsets check that TEXT ordering is chronological.
	require.NoError(t, s.InsertCertificateUnique(ctx, testCertificate("c1", "u1", "t1", "A", testTime)))
	require.NoError(t, s.InsertCertificateUnique(ctx, testCertificate("c2", "u1", "t2", "B", testTime.Add(500*time.Millisecond))))
	require.NoError(t, s.InsertCertificateUnique(ctx, testCertificate("c3", "u1", "t3", "C", testTime.Add(2*time.Second))))
	require.NoError(t, s.InsertCertificateUnique(ctx, testCertificate("c4", "u2", "t1", "D", testTime)))

	certs, err := s.ListCertificates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, certs, 3)
	assert.Equal(t, "c3", certs[0].ID)
	assert.Equal(t, "c2", certs[1].ID)
	assert.Equal(t, "c1", certs[2].ID)

	n, err := s.CountCertificates(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	none, err := s.ListCertificates(ctx, "u9")
	require.NoError(t, err)
	assert.Empty(t, none)
}
