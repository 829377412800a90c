package repository

import (
	"ethioheritage_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) WithTx(tx *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: tx}
}

// FindActive returns the valid certificate of a learner for a course.
func (r *CertificateRepository) FindActive(userID, courseID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("user_id = ? AND course_id = ? AND is_valid = ?", userID, courseID, true).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) FindByVerificationCode(code string) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.DB.Where("verification_code = ?", code).First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) FindByCertificateID(certificateID string) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.DB.Where("certificate_id = ?", certificateID).First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) CertificateIDExists(certificateID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).Where("certificate_id = ?", certificateID).Count(&count).Error
	return count > 0, err
}

func (r *CertificateRepository) VerificationCodeExists(code string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).Where("verification_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *CertificateRepository) Create(cert *model.Certificate) error {
	return r.DB.Create(cert).Error
}

func (r *CertificateRepository) SetDocumentURL(id, url string) error {
	return r.DB.Model(&model.Certificate{}).Where("id = ?", id).Update("document_url", url).Error
}

func (r *CertificateRepository) Revoke(cert *model.Certificate, reason string, at time.Time) error {
	err := r.DB.Model(cert).Updates(map[string]interface{}{
		"is_valid":      false,
		"revoked_at":    at,
		"revoke_reason": reason,
	}).Error
	if err != nil {
		return err
	}
	cert.IsValid = false
	cert.RevokedAt = &at
	cert.RevokeReason = reason
	return nil
}

func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("completion_date DESC").Find(&certs).Error
	return certs, err
}
