package database

import (
	"ethioheritage_backend/internal/config"
	"ethioheritage_backend/internal/model"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDBSQLiteMigratesAndSeeds(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	require.NoError(t, SeedDemoCatalog(db))
	require.NoError(t, SeedDemoCatalog(db), "seeding twice is a no-op")

	var courses []model.Course
	require.NoError(t, db.Preload("Lessons").Find(&courses).Error)
	require.Len(t, courses, 1)
	assert.Len(t, courses[0].Lessons, 4)
}

func TestDialectorByDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"", "mysql"},
		{"mysql", "mysql"},
		{"postgres", "postgres"},
		{"sqlite", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.driver, func(t *testing.T) {
			d, err := dialector(&config.DatabaseConfig{
				Driver: tt.driver,
				Path:   "file:" + uuid.NewString() + "?mode=memory",
				Host:   "127.0.0.1",
				Port:   5432,
				DBName: "ethioheritage",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	rdb, err := InitRedis(&config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port})
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = InitRedis(&config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: port})
	assert.Error(t, err)
}
