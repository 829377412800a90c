package service

import (
	"ethioheritage_backend/internal/config"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/database"
	"ethioheritage_backend/pkg/events"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var addisAbaba = time.FixedZone("EAT", 3*60*60)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[uint][]WSMessage
}

func (n *recordingNotifier) PushToUser(userID uint, msg WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[uint][]WSMessage)
	}
	n.sent[userID] = append(n.sent[userID], msg)
}

func (n *recordingNotifier) types(userID uint) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.sent[userID] {
		out = append(out, m.Type)
	}
	return out
}

type fixture struct {
	db           *gorm.DB
	clock        *testClock
	notifier     *recordingNotifier
	events       *events.MemoryPublisher
	catalog      *CatalogService
	progress     *ProgressService
	achievements *AchievementService
	certificates *CertificateService
	analytics    *AnalyticsService
	storageRoot  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: util.DatabaseSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		db:          db,
		clock:       &testClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, addisAbaba)},
		notifier:    &recordingNotifier{},
		events:      events.NewMemoryPublisher(),
		storageRoot: t.TempDir(),
	}

	locker := NewLocalLocker(5 * time.Second)
	progressRepo := repository.NewProgressRepository(db)

	f.catalog = NewCatalogService(repository.NewCatalogRepository(db), nil)
	f.achievements = NewAchievementService(repository.NewAchievementRepository(db))
	f.progress = NewProgressService(
		db,
		f.catalog,
		progressRepo,
		repository.NewStatisticsRepository(db),
		f.achievements,
		locker,
		f.notifier,
		f.events,
		&config.ProgressConfig{ConflictRetries: 3},
	)
	f.progress.Now = f.clock.Now
	f.progress.UpdateSettings(ProgressSettings{Location: addisAbaba, ConflictRetries: 3})

	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: f.storageRoot})
	f.certificates = NewCertificateService(
		repository.NewCertificateRepository(db),
		progressRepo,
		f.catalog,
		storage,
		locker,
		f.notifier,
		f.events,
	)
	f.certificates.Now = f.clock.Now

	f.analytics = NewAnalyticsService(repository.NewAnalyticsRepository(db), f.catalog)
	f.analytics.Now = f.clock.Now
	return f
}

// course creates a published course with n lessons owned by instructor 100.
func (f *fixture) course(t *testing.T, title string, n int) *model.Course {
	t.Helper()
	course := &model.Course{Title: title, Category: "history", InstructorID: 100, Published: true}
	for i := 0; i < n; i++ {
		course.Lessons = append(course.Lessons, model.Lesson{Title: title + " lesson", Position: i + 1, DurationMinutes: 10})
	}
	require.NoError(t, f.catalog.Repo.CreateCourse(course))
	return course
}

func score(v int) *int { return &v }
