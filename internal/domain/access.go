package domain

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultPhotoContentType is served when the photo bytes are not recognised.
const DefaultPhotoContentType = "image/jpeg"

// AccessGuard decides which validators may see which submission photos.
type AccessGuard struct {
	store  Store
	logger *slog.Logger
}

// NewAccessGuard constructs an AccessGuard.
func NewAccessGuard(store Store, logger *slog.Logger) *AccessGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessGuard{store: store, logger: logger}
}

// CanAccessSubmissionPhoto reports whether the caller may view the submission.
// Only validators whose zone matches the submission's zone are allowed.
func (g *AccessGuard) CanAccessSubmissionPhoto(ctx context.Context, callerID int64, callerRole string, submissionID int64) (bool, error) {
	var allowed bool
	err := g.store.WithinTx(ctx, func(ctx context.Context, l Ledgers) error {
		_, err := g.authorize(ctx, l, Caller{UserID: callerID, Role: callerRole}, submissionID)
		if err == nil {
			allowed = true
			return nil
		}
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return false, storeError("check photo access", err)
	}
	return allowed, nil
}

// SubmissionPhoto returns the photo of a submission in the caller's zone.
// ErrForbidden means the caller is not a validator with a zone. ErrNotFound is
// returned alike for missing submissions, submissions in other zones and
// submissions without a photo.
func (g *AccessGuard) SubmissionPhoto(ctx context.Context, caller Caller, submissionID int64) (*Photo, error) {
	if submissionID <= 0 {
		return nil, invalid("submission_id", "must be a positive integer")
	}

	var data []byte
	err := g.store.WithinTx(ctx, func(ctx context.Context, l Ledgers) error {
		zoneID, err := g.authorize(ctx, l, caller, submissionID)
		if err != nil {
			return err
		}
		data, err = l.Submissions.GetPhoto(ctx, submissionID, zoneID)
		if err != nil {
			return storeError("load photo", err)
		}
		if len(data) == 0 {
			return ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound):
		return nil, err
	default:
		return nil, storeError("load photo", err)
	}

	return &Photo{
		SubmissionID: submissionID,
		Data:         data,
		ContentType:  DetectPhotoContentType(data),
	}, nil
}

// authorize returns the caller's zone when the submission belongs to it.
func (g *AccessGuard) authorize(ctx context.Context, l Ledgers, caller Caller, submissionID int64) (int64, error) {
	if caller.Role != RoleValidator {
		return 0, ErrForbidden
	}
	callerZone, found, err := l.Users.GetZone(ctx, caller.UserID)
	if err != nil {
		return 0, storeError("load caller zone", err)
	}
	if !found || callerZone <= 0 {
		return 0, ErrForbidden
	}
	submissionZone, found, err := l.Submissions.GetZone(ctx, submissionID)
	if err != nil {
		return 0, storeError("load submission zone", err)
	}
	if !found || submissionZone != callerZone {
		g.logger.DebugContext(ctx, "photo access denied", "caller_id", caller.UserID, "submission_id", submissionID)
		return 0, ErrNotFound
	}
	return callerZone, nil
}

// DetectPhotoContentType sniffs the image type from the payload's magic bytes.
// Only raster image types are passed through; markup such as HTML or SVG is
// served as DefaultPhotoContentType.
func DetectPhotoContentType(data []byte) string {
	if len(data) == 0 {
		return DefaultPhotoContentType
	}
	detected := mimetype.Detect(data)
	if detected == nil || detected.Is("image/svg+xml") {
		return DefaultPhotoContentType
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		return DefaultPhotoContentType
	}
	return detected.String()
}
