package service

import (
	"context"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/progress"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/events"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeCourse(t *testing.T, f *fixture, userID uint, course *model.Course, scores ...int) {
	t.Helper()
	for i, lesson := range course.Lessons {
		c := progress.Completion{TimeSpent: 15}
		if i < len(scores) {
			c.Score = score(scores[i])
		}
		_, err := f.progress.CompleteLesson(context.Background(), userID, lesson.ID, c)
		require.NoError(t, err)
	}
}

func TestIssueRequiresCompletedCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Gheralta", 2)

	_, _, err := f.certificates.Issue(ctx, 1, "Tirunesh", course.ID)
	assert.ErrorIs(t, err, util.ErrNotEligible, "not enrolled")

	_, err = f.progress.CompleteLesson(ctx, 1, course.Lessons[0].ID, progress.Completion{})
	require.NoError(t, err)
	_, _, err = f.certificates.Issue(ctx, 1, "Tirunesh", course.ID)
	assert.ErrorIs(t, err, util.ErrNotEligible, "half done")

	certs, err := f.certificates.ListCertificates(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, certs)

	_, _, err = f.certificates.Issue(ctx, 1, "Tirunesh", 999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestIssueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Bale Mountains", 2)
	completeCourse(t, f, 1, course, 70, 80)

	first, created, err := f.certificates.Issue(ctx, 1, "Tirunesh Dibaba", course.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Regexp(t, regexp.MustCompile(`^EH360-2026-[0-9a-f]{8}$`), first.CertificateID)
	assert.Len(t, first.VerificationCode, 32)
	assert.Equal(t, 75, first.FinalScore)

	second, created, err := f.certificates.Issue(ctx, 1, "Tirunesh Dibaba", course.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.CertificateID, second.CertificateID)
	assert.Equal(t, first.VerificationCode, second.VerificationCode)

	assert.Len(t, f.events.OfType(events.CertificateIssued), 1)
}

func TestIssueWithoutScoresHasZeroFinalScore(t *testing.T) {
	f := newFixture(t)
	course := f.course(t, "Danakil", 2)
	completeCourse(t, f, 1, course)

	cert, _, err := f.certificates.Issue(context.Background(), 1, "Haile", course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cert.FinalScore)
}

func TestIssueStoresDocument(t *testing.T) {
	f := newFixture(t)
	course := f.course(t, "Harar Jugol", 1)
	completeCourse(t, f, 1, course, 95)

	cert, _, err := f.certificates.Issue(context.Background(), 1, "Derartu Tulu", course.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/certificates/"+cert.CertificateID+".html", cert.DocumentURL)

	doc, err := os.ReadFile(filepath.Join(f.storageRoot, "certificates", cert.CertificateID+".html"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Derartu Tulu")
	assert.Contains(t, string(doc), "Harar Jugol")
	assert.Contains(t, string(doc), cert.VerificationCode)
}

func TestIssueRetriesIdentifierCollisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.course(t, "Yeha", 1)
	b := f.course(t, "Sodo", 1)
	completeCourse(t, f, 1, a)
	completeCourse(t, f, 1, b)

	ids := []string{"EH360-2026-aaaaaaaa", "EH360-2026-aaaaaaaa", "EH360-2026-bbbbbbbb"}
	codes := []string{"CODEA", "CODEA", "CODEB"}
	f.certificates.newID = func(time.Time) (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}
	f.certificates.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first, _, err := f.certificates.Issue(ctx, 1, "Kenenisa", a.ID)
	require.NoError(t, err)
	second, _, err := f.certificates.Issue(ctx, 1, "Kenenisa", b.ID)
	require.NoError(t, err)

	assert.Equal(t, "EH360-2026-aaaaaaaa", first.CertificateID)
	assert.Equal(t, "EH360-2026-bbbbbbbb", second.CertificateID)
	assert.Equal(t, "CODEB", second.VerificationCode)
}

func TestVerifyAndRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Fasil Ghebbi", 2)
	completeCourse(t, f, 1, course, 90, 70)

	cert, _, err := f.certificates.Issue(ctx, 1, "Almaz Ayana", course.ID)
	require.NoError(t, err)

	v, err := f.certificates.Verify(ctx, strings.ToLower(" "+cert.VerificationCode+" "))
	require.NoError(t, err)
	assert.Equal(t, cert.CertificateID, v.CertificateID)
	assert.Equal(t, "Almaz Ayana", v.LearnerName)
	assert.Equal(t, "Fasil Ghebbi", v.CourseTitle)
	assert.Equal(t, 80, v.FinalScore)
	assert.Equal(t, 2, v.LessonsCompleted)
	assert.Equal(t, 2, v.TotalLessons)
	assert.True(t, v.IsValid)

	_, err = f.certificates.Verify(ctx, "NOPE")
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)
	_, err = f.certificates.Verify(ctx, "")
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)

	revoked, err := f.certificates.Revoke(ctx, cert.CertificateID, "issued in error")
	require.NoError(t, err)
	assert.False(t, revoked.IsValid)
	require.NotNil(t, revoked.RevokedAt)

	again, err := f.certificates.Revoke(ctx, cert.CertificateID, "second reason")
	require.NoError(t, err)
	assert.Equal(t, "issued in error", again.RevokeReason)

	_, err = f.certificates.Verify(ctx, cert.VerificationCode)
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)

	_, err = f.certificates.Revoke(ctx, "EH360-2026-00000000", "")
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)

	// a fresh certificate is issued after revocation
	reissued, created, err := f.certificates.Issue(ctx, 1, "Almaz Ayana", course.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, cert.CertificateID, reissued.CertificateID)

	assert.Len(t, f.events.OfType(events.CertificateRevoked), 1)
	assert.Contains(t, f.notifier.types(1), NotifyCertificateRevoked)
}
