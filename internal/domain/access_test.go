package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vibe-with-wyn/green-roots/internal/domain"
	"github.com/vibe-with-wyn/green-roots/internal/persistence/memory"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type accessWorld struct {
	guard     *domain.AccessGuard
	validator int64
	zoneless  int64
	member    int64
	ownSub    int64
	otherSub  int64
	blankSub  int64
}

func newAccessWorld(t *testing.T) accessWorld {
	t.Helper()
	store := memory.NewStore()
	north := store.PutZone(domain.Zone{Name: "North Ridge"})
	south := store.PutZone(domain.Zone{Name: "South Bay"})

	w := accessWorld{guard: domain.NewAccessGuard(store, discardLogger())}
	w.validator = store.PutUser(domain.User{ZoneID: &north, Role: domain.RoleValidator})
	w.zoneless = store.PutUser(domain.User{Role: domain.RoleValidator})
	w.member = store.PutUser(domain.User{ZoneID: &north, Role: "user"})
	w.ownSub = store.PutSubmission(domain.Submission{ZoneID: &north, SubmittedAt: submittedAt, Photo: jpegHeader})
	w.otherSub = store.PutSubmission(domain.Submission{ZoneID: &south, SubmittedAt: submittedAt, Photo: jpegHeader})
	w.blankSub = store.PutSubmission(domain.Submission{ZoneID: &north, SubmittedAt: submittedAt})
	return w
}

func TestCanAccessSubmissionPhoto(t *testing.T) {
	w := newAccessWorld(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		caller  int64
		role    string
		sub     int64
		allowed bool
	}{
		{"same zone validator", w.validator, domain.RoleValidator, w.ownSub, true},
		{"other zone", w.validator, domain.RoleValidator, w.otherSub, false},
		{"missing submission", w.validator, domain.RoleValidator, 9999, false},
		{"not a validator", w.member, "user", w.ownSub, false},
		{"role is taken from the token", w.member, domain.RoleValidator, w.ownSub, true},
		{"validator without zone", w.zoneless, domain.RoleValidator, w.ownSub, false},
		{"unknown caller", 9999, domain.RoleValidator, w.ownSub, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := w.guard.CanAccessSubmissionPhoto(ctx, tc.caller, tc.role, tc.sub)
			require.NoError(t, err)
			require.Equal(t, tc.allowed, ok)
		})
	}
}

func TestSubmissionPhoto(t *testing.T) {
	w := newAccessWorld(t)
	ctx := context.Background()
	validator := domain.Caller{UserID: w.validator, Role: domain.RoleValidator}

	photo, err := w.guard.SubmissionPhoto(ctx, validator, w.ownSub)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", photo.ContentType)
	require.Equal(t, jpegHeader, photo.Data)

	_, err = w.guard.SubmissionPhoto(ctx, validator, w.otherSub)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = w.guard.SubmissionPhoto(ctx, validator, 9999)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = w.guard.SubmissionPhoto(ctx, validator, w.blankSub)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = w.guard.SubmissionPhoto(ctx, domain.Caller{UserID: w.member, Role: "user"}, w.ownSub)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = w.guard.SubmissionPhoto(ctx, domain.Caller{UserID: w.zoneless, Role: domain.RoleValidator}, w.ownSub)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.guard.SubmissionPhoto(ctx, validator, 0)
	require.True(t, domain.IsValidation(err))
}

type brokenStore struct{ err error }

func (b brokenStore) WithinTx(context.Context, func(context.Context, domain.Ledgers) error) error {
	return b.err
}

func TestAccessGuardSurfacesStoreErrors(t *testing.T) {
	cause := errors.New("connection refused")
	guard := domain.NewAccessGuard(brokenStore{err: cause}, discardLogger())

	_, err := guard.CanAccessSubmissionPhoto(context.Background(), 1, domain.RoleValidator, 1)
	var se *domain.StoreError
	require.ErrorAs(t, err, &se)

	_, err = guard.SubmissionPhoto(context.Background(), domain.Caller{UserID: 1, Role: domain.RoleValidator}, 1)
	require.ErrorIs(t, err, cause)
	require.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestDetectPhotoContentType(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	require.Equal(t, "image/png", domain.DetectPhotoContentType(png))
	require.Equal(t, "image/jpeg", domain.DetectPhotoContentType(jpegHeader))
	require.Equal(t, domain.DefaultPhotoContentType, domain.DetectPhotoContentType(nil))
	require.Equal(t, domain.DefaultPhotoContentType, domain.DetectPhotoContentType([]byte{0x01, 0x02, 0x03}))
	require.Equal(t, domain.DefaultPhotoContentType, domain.DetectPhotoContentType([]byte("plain text")))
	require.Equal(t, domain.DefaultPhotoContentType, domain.DetectPhotoContentType([]byte("<!DOCTYPE html><html><body><script>alert(1)</script></body></html>")))
	require.Equal(t, domain.DefaultPhotoContentType, domain.DetectPhotoContentType([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)))
	require.Equal(t, domain.DefaultPhotoContentType, domain.DetectPhotoContentType([]byte("%PDF-1.7\n")))
}
