package service

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/mikoro-portal/internal/dto"
	"github.com/noah-isme/mikoro-portal/internal/models"
)

const maxPhotoBytes = 5 * 1024 * 1024

var (
	// ErrPhotoUploadDisabled indicates no photo storage is configured.
	ErrPhotoUploadDisabled = errors.New("photo upload is not configured")
	// ErrPhotoTooLarge indicates the photo exceeds the size limit.
	ErrPhotoTooLarge = errors.New("photo exceeds maximum allowed size")
	// ErrPhotoTypeNotAllowed indicates the photo is not a supported image type.
	ErrPhotoTypeNotAllowed = errors.New("photo type not allowed")
)

var allowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// PhotoStorage uploads an image and returns its public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// PhotoService stores student profile photos and records the resulting URL.
type PhotoService interface {
	UploadStudentPhoto(ctx context.Context, studentID string, reader io.Reader) (models.Student, error)
}

type photoService struct {
	storage PhotoStorage
	records RecordService
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewPhotoService constructs the photo service. storage may be nil, in which
// case every upload fails with ErrPhotoUploadDisabled.
func NewPhotoService(storage PhotoStorage, records RecordService, logger zerolog.Logger) PhotoService {
	return &photoService{
		storage: storage,
		records: records,
		logger:  logger.With().Str("component", "photo_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/mikoro-portal/internal/service/photo"),
	}
}

func (s *photoService) UploadStudentPhoto(ctx context.Context, studentID string, reader io.Reader) (models.Student, error) {
	if s.storage == nil {
		return models.Student{}, ErrPhotoUploadDisabled
	}

	ctx, span := s.tracer.Start(ctx, "photo.upload", trace.WithAttributes(attribute.String("photo.student_id", studentID)))
	defer span.End()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(reader, maxPhotoBytes+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return models.Student{}, err
	}
	if buf.Len() > maxPhotoBytes {
		span.SetStatus(codes.Error, "payload too large")
		return models.Student{}, ErrPhotoTooLarge
	}

	detected := mimetype.Detect(buf.Bytes()).String()
	span.SetAttributes(attribute.String("photo.detected_mime", detected))
	if _, ok := allowedPhotoTypes[detected]; !ok {
		span.SetStatus(codes.Error, "type not allowed")
		return models.Student{}, ErrPhotoTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, studentID, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return models.Student{}, err
	}

	student, err := s.records.UpdateProfile(ctx, studentID, dto.ProfileInput{PhotoURL: url})
	if err != nil {
		span.RecordError(err)
		return models.Student{}, err
	}

	logger := contextLogger(ctx, s.logger)
	logger.Info().Str("student_id", studentID).Str("mime", detected).Msg("student photo updated")
	span.SetStatus(codes.Ok, "stored")
	return student, nil
}
