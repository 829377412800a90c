package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/progress"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/events"
	"ethioheritage_backend/pkg/logger"
	"ethioheritage_backend/pkg/monitoring"
	"ethioheritage_backend/pkg/tracing"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxIdentifierAttempts = 5

var verificationEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func newCertificateID(now time.Time) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("EH360-%d-%s", now.Year(), hex.EncodeToString(b)), nil
}

// newVerificationCode returns 160 random bits as 32 base32 characters.
func newVerificationCode() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return verificationEncoding.EncodeToString(b), nil
}

type CertificateService struct {
	CertRepo     *repository.CertificateRepository
	ProgressRepo *repository.ProgressRepository
	Catalog      CatalogReader
	Storage      *StorageService
	Locker       LearnerLocker
	Notifier     Notifier
	Events       events.Publisher
	Now          func() time.Time

	newID   func(time.Time) (string, error)
	newCode func() (string, error)
}

func NewCertificateService(
	certRepo *repository.CertificateRepository,
	progressRepo *repository.ProgressRepository,
	catalog CatalogReader,
	storage *StorageService,
	locker LearnerLocker,
	notifier Notifier,
	publisher events.Publisher,
) *CertificateService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CertificateService{
		CertRepo:     certRepo,
		ProgressRepo: progressRepo,
		Catalog:      catalog,
		Storage:      storage,
		Locker:       locker,
		Notifier:     notifier,
		Events:       publisher,
		Now:          time.Now,
		newID:        newCertificateID,
		newCode:      newVerificationCode,
	}
}

// uniqueIdentifiers draws a certificate id and verification code not present in the store.
func (s *CertificateService) uniqueIdentifiers(now time.Time) (string, string, error) {
	var certID, code string
	for attempt := 0; ; attempt++ {
		if attempt == maxIdentifierAttempts {
			return "", "", errors.New("could not generate unique certificate identifiers")
		}
		id, err := s.newID(now)
		if err != nil {
			return "", "", err
		}
		exists, err := s.CertRepo.CertificateIDExists(id)
		if err != nil {
			return "", "", err
		}
		if !exists {
			certID = id
			break
		}
	}
	for attempt := 0; ; attempt++ {
		if attempt == maxIdentifierAttempts {
			return "", "", errors.New("could not generate unique certificate identifiers")
		}
		c, err := s.newCode()
		if err != nil {
			return "", "", err
		}
		exists, err := s.CertRepo.VerificationCodeExists(c)
		if err != nil {
			return "", "", err
		}
		if !exists {
			code = c
			break
		}
	}
	return certID, code, nil
}

// Issue returns the learner's active certificate for the course, creating it when the course
// is completed. created reports whether this call wrote it.
func (s *CertificateService) Issue(ctx context.Context, userID uint, learnerName string, courseID uint) (cert *model.Certificate, created bool, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "CertificateService.Issue")
	defer span.End()
	span.SetAttributes(attribute.Int64("course.id", int64(courseID)))

	course, err := s.Catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}

	unlock, err := s.Locker.Lock(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	cp, err := s.ProgressRepo.FindCourseProgress(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, util.ErrNotEligible
		}
		return nil, false, err
	}
	if cp.Status != model.StatusCompleted {
		return nil, false, util.ErrNotEligible
	}

	existing, err := s.CertRepo.FindActive(userID, courseID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	now := s.Now()
	completionDate := now
	if cp.CompletedAt != nil {
		completionDate = *cp.CompletedAt
	}
	totalLessons := len(course.Lessons)
	if totalLessons == 0 {
		totalLessons = len(cp.Lessons)
	}

	cert = &model.Certificate{
		UserID:           userID,
		CourseID:         courseID,
		LearnerName:      strings.TrimSpace(learnerName),
		CourseTitle:      course.Title,
		CompletionDate:   completionDate,
		FinalScore:       progress.CourseScore(cp),
		TimeSpent:        progress.CourseTimeSpent(cp),
		LessonsCompleted: cp.CompletedLessons(),
		TotalLessons:     totalLessons,
		IsValid:          true,
	}

	for attempt := 0; ; attempt++ {
		cert.CertificateID, cert.VerificationCode, err = s.uniqueIdentifiers(now)
		if err != nil {
			return nil, false, err
		}
		err = s.CertRepo.Create(cert)
		if err == nil {
			break
		}
		// lost a race for an identifier
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt+1 >= maxIdentifierAttempts {
			return nil, false, fmt.Errorf("create certificate: %w", err)
		}
		cert.ID = ""
	}

	s.storeDocument(ctx, cert)

	monitoring.CertificatesIssued.Inc()
	logger.Log.Info("Certificate issued",
		zap.String("certificateId", cert.CertificateID),
		zap.Uint("userId", userID),
		zap.Uint("courseId", courseID),
	)

	s.Notifier.PushToUser(userID, WSMessage{Type: NotifyCertificateIssued, Data: cert})
	s.publish(ctx, events.Event{
		Type:     events.CertificateIssued,
		UserID:   userID,
		CourseID: courseID,
		Data:     map[string]interface{}{"certificateId": cert.CertificateID, "finalScore": cert.FinalScore},
	})
	return cert, true, nil
}

// storeDocument renders and uploads the certificate document. Failure leaves DocumentURL empty.
func (s *CertificateService) storeDocument(ctx context.Context, cert *model.Certificate) {
	if s.Storage == nil {
		return
	}
	doc, err := renderCertificate(cert)
	if err != nil {
		logger.Log.Error("Failed to render certificate", zap.String("certificateId", cert.CertificateID), zap.Error(err))
		return
	}
	key := "certificates/" + cert.CertificateID + ".html"
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(doc), int64(len(doc)), util.MimeHTML)
	if err != nil {
		logger.Log.Error("Failed to upload certificate document", zap.String("certificateId", cert.CertificateID), zap.Error(err))
		return
	}
	if err := s.CertRepo.SetDocumentURL(cert.ID, url); err != nil {
		logger.Log.Error("Failed to record certificate document", zap.String("certificateId", cert.CertificateID), zap.Error(err))
		return
	}
	cert.DocumentURL = url
}

// Verify resolves a public verification code. Unknown and revoked codes look the same.
func (s *CertificateService) Verify(ctx context.Context, code string) (*model.CertificateVerification, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, util.ErrCertificateNotFound
	}
	cert, err := s.CertRepo.FindByVerificationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}
	if !cert.IsValid {
		return nil, util.ErrCertificateNotFound
	}
	v := cert.Verification()
	return &v, nil
}

// Revoke invalidates a certificate. Revoking an already revoked certificate changes nothing.
func (s *CertificateService) Revoke(ctx context.Context, certificateID, reason string) (*model.Certificate, error) {
	cert, err := s.CertRepo.FindByCertificateID(certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}
	if !cert.IsValid {
		return cert, nil
	}
	if err := s.CertRepo.Revoke(cert, strings.TrimSpace(reason), s.Now()); err != nil {
		return nil, err
	}

	logger.Log.Info("Certificate revoked", zap.String("certificateId", certificateID), zap.String("reason", reason))
	s.Notifier.PushToUser(cert.UserID, WSMessage{
		Type: NotifyCertificateRevoked,
		Data: map[string]interface{}{"certificateId": cert.CertificateID, "courseId": cert.CourseID},
	})
	s.publish(ctx, events.Event{
		Type:     events.CertificateRevoked,
		UserID:   cert.UserID,
		CourseID: cert.CourseID,
		Data:     map[string]interface{}{"certificateId": cert.CertificateID, "reason": cert.RevokeReason},
	})
	return cert, nil
}

func (s *CertificateService) ListCertificates(ctx context.Context, userID uint) ([]model.Certificate, error) {
	return s.CertRepo.ListByUser(userID)
}

func (s *CertificateService) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = s.Now()
	if err := s.Events.Publish(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
