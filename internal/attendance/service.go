package attendance

import (
	"context"
	"errors"
	"log/slog"

	"pediattend/internal/geofence"
	"pediattend/internal/user"
)

// Caller-distinguishable failure kinds. Handlers map these to HTTP statuses;
// everything else is an internal error.
var (
	ErrUnauthorized = errors.New("not authorized")
	ErrForbidden    = errors.New("forbidden")
	ErrOutOfBounds  = errors.New("outside allowed area")
	ErrUploadFailed = errors.New("photo upload failed")
	ErrInternal     = errors.New("internal error")
)

// Ledger is the append-only attendance store.
type Ledger interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	Count(ctx context.Context) (int64, error)
}

// Directory resolves token subjects to user records.
type Directory interface {
	ByPhoneOrEmail(ctx context.Context, ident string) (*user.User, error)
}

// Uploader sends photo evidence to external storage and returns a durable URL.
type Uploader interface {
	Upload(ctx context.Context, base64Image string) (string, error)
}

// ExportSummary is the stub export contract: a placeholder document reference
// and the record count, until a real report pipeline exists.
type ExportSummary struct {
	PDFURL string `json:"pdf_url"`
	Count  int64  `json:"count"`
}

// Service composes identity, authorization, geofencing, evidence upload and
// the ledger write into the check-in protocol.
type Service struct {
	ledger   Ledger
	users    Directory
	fence    geofence.Fence
	uploader Uploader // nil when photo storage is not configured
	logger   *slog.Logger
}

// NewService wires the orchestrator.
func NewService(ledger Ledger, users Directory, fence geofence.Fence, uploader Uploader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, users: users, fence: fence, uploader: uploader, logger: logger}
}

// resolve runs the identity and authorization gates: the subject must map to
// an active user of the required type. The geofence gate never runs before
// this, so unauthenticated callers cannot probe the fence.
func (s *Service) resolve(ctx context.Context, subject, requiredType string) (*user.User, error) {
	if subject == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.users.ByPhoneOrEmail(ctx, subject)
	if err != nil {
		s.logger.Error("user lookup failed", slog.String("error", err.Error()))
		return nil, ErrInternal
	}
	if u == nil || !u.IsActive {
		return nil, ErrUnauthorized
	}
	if u.UserType != requiredType {
		return nil, ErrForbidden
	}
	return u, nil
}

// CheckIn runs the sequential gate protocol and, when every gate passes,
// appends one record with status "present". The photo upload happens strictly
// before the insert: an upload failure aborts with nothing persisted, and an
// insert failure persists nothing, so no record can ever reference a photo
// that failed to upload.
func (s *Service) CheckIn(ctx context.Context, subject string, lat, lng float64, photoBase64 string) (Record, error) {
	u, err := s.resolve(ctx, subject, user.TypeStudent)
	if err != nil {
		return Record{}, err
	}

	if !s.fence.Contains(lat, lng) {
		return Record{}, ErrOutOfBounds
	}

	photoURL := ""
	if photoBase64 != "" {
		if s.uploader == nil {
			s.logger.Warn("photo submitted but storage not configured", slog.String("user_id", u.ID))
			return Record{}, ErrUploadFailed
		}
		url, err := s.uploader.Upload(ctx, photoBase64)
		if err != nil {
			s.logger.Warn("photo upload failed", slog.String("user_id", u.ID), slog.String("error", err.Error()))
			return Record{}, ErrUploadFailed
		}
		photoURL = url
	}

	rec, err := s.ledger.Insert(ctx, Record{
		UserID:    u.ID,
		Latitude:  lat,
		Longitude: lng,
		PhotoURL:  photoURL,
		Status:    StatusPresent,
	})
	if err != nil {
		s.logger.Error("attendance insert failed", slog.String("user_id", u.ID), slog.String("error", err.Error()))
		return Record{}, ErrInternal
	}

	s.logger.Info("attendance recorded",
		slog.String("id", rec.ID),
		slog.String("user_id", u.ID),
		slog.Bool("photo", photoURL != ""))
	return rec, nil
}

// ListAll returns every record newest-first. Admin only.
func (s *Service) ListAll(ctx context.Context, subject string) ([]Record, error) {
	if _, err := s.resolve(ctx, subject, user.TypeAdmin); err != nil {
		return nil, err
	}
	recs, err := s.ledger.ListAll(ctx)
	if err != nil {
		s.logger.Error("attendance list failed", slog.String("error", err.Error()))
		return nil, ErrInternal
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// Export returns the export stub: a placeholder URL plus the record count.
// Admin only.
func (s *Service) Export(ctx context.Context, subject string) (ExportSummary, error) {
	if _, err := s.resolve(ctx, subject, user.TypeAdmin); err != nil {
		return ExportSummary{}, err
	}
	n, err := s.ledger.Count(ctx)
	if err != nil {
		s.logger.Error("attendance count failed", slog.String("error", err.Error()))
		return ExportSummary{}, ErrInternal
	}
	return ExportSummary{PDFURL: "https://example.com/report.pdf", Count: n}, nil
}
