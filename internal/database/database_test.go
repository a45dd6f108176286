package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"chirp/internal/config"
	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{DBMaxOpenConns: 10, DBMaxIdleConns: 5, DBConnMaxLifetimeMinutes: 15}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestGetReadDB_FallsBackToPrimary(t *testing.T) {
	primary := openSQLite(t)
	ReadDB = nil
	assert.Same(t, primary, GetReadDB(primary))

	replica := openSQLite(t)
	ReadDB = replica
	defer func() { ReadDB = nil }()
	assert.Same(t, replica, GetReadDB(primary))
}

func TestAutoMigrate_CreatesEdgeTables(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, model := range []any{&models.User{}, &models.Tweet{}, &models.TweetRelation{}, &models.Follow{}, &models.ReplyLink{}, &models.Hashtag{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}

	require.NoError(t, db.Create(&models.TweetRelation{Kind: models.RelationLike, UserID: 1, TweetID: 1}).Error)
	err := db.Create(&models.TweetRelation{Kind: models.RelationLike, UserID: 1, TweetID: 1}).Error
	assert.Error(t, err, "duplicate edge must violate the unique index")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid dev", config.Config{Env: "development"}, true, true, false},
		{"hybrid prod", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql", config.Config{Env: "development", DBSchemaMode: "sql"}, true, false, false},
		{"auto dev", config.Config{Env: "development", DBSchemaMode: "auto"}, false, true, false},
		{"auto prod refused", config.Config{Env: "staging", DBSchemaMode: "auto"}, false, false, true},
		{"auto prod allowed", config.Config{Env: "prod", DBSchemaMode: "AUTO", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"unknown", config.Config{DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_add_index.up.sql":   {Data: []byte("CREATE INDEX a ON t (id);")},
		"m/000002_add_index.down.sql": {Data: []byte("DROP INDEX a;")},
		"m/000001_init.up.sql":        {Data: []byte("CREATE TABLE t (id INTEGER);")},
		"m/000001_init.down.sql":      {Data: []byte("DROP TABLE t;")},
		"m/README.md":                 {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "000001_init", got[0].String())
	assert.Equal(t, 2, got[1].Version)
	assert.Equal(t, "DROP INDEX a;", got[1].DownScript)
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{"m/000001_init.up.sql": {Data: []byte("SELECT 1;")}}
	_, err := LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, 1, ms[0].Version)
	assert.Contains(t, ms[0].UpScript, "CREATE TABLE IF NOT EXISTS tweet_relations")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestMigrationStore_ApplyAndRevert(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	store := NewMigrationStore(db)
	ctx := context.Background()

	m := Migration{Version: 7, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER)", DownScript: "DROP TABLE widgets"}
	require.NoError(t, store.ApplyMigration(ctx, m))

	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, applied)
	assert.True(t, db.Migrator().HasTable("widgets"))

	require.NoError(t, store.RevertMigration(ctx, m))
	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.False(t, db.Migrator().HasTable("widgets"))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	assert.ErrorContains(t, validateAppliedVersions([]int{1, 5}, registered), "000005")
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := &CustomGormLogger{
		logger: slog.New(slog.NewTextHandler(&buf, nil)),
		Config: logger.Config{SlowThreshold: 200 * time.Millisecond, LogLevel: logger.Warn},
	}
	sql := func() (string, int64) { return "SELECT * FROM tweets", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "GORM query error")
}
