package upgrade

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/haierkeys/simple-note-service/internal/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newLegacyDB 创建旧版本结构的 note 表，tags 允许 NULL
func newLegacyDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{Type: "sqlite", Path: dao.MemoryPath}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, db.Exec(`CREATE TABLE note (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tags TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)

	rows := []struct {
		title string
		tags  interface{}
	}{
		{"null tags", nil},
		{"padded", "  work,home "},
		{"clean", "a,b"},
	}
	for _, r := range rows {
		require.NoError(t, db.Exec("INSERT INTO note (title, content, tags) VALUES (?, ?, ?)", r.title, "c", r.tags).Error)
	}
	return db
}

func tagsByTitle(t *testing.T, db *gorm.DB) map[string]*string {
	t.Helper()

	type row struct {
		Title string
		Tags  *string
	}
	var rows []row
	require.NoError(t, db.Raw("SELECT title, tags FROM note").Scan(&rows).Error)

	out := make(map[string]*string, len(rows))
	for _, r := range rows {
		out[r.Title] = r.Tags
	}
	return out
}

func TestTagsNormalizeMigrate_Up(t *testing.T) {
	db := newLegacyDB(t)

	require.NoError(t, (&TagsNormalizeMigrate{}).Up(db, context.Background()))

	got := tagsByTitle(t, db)
	require.Len(t, got, 3)
	for title, want := range map[string]string{
		"null tags": "",
		"padded":    "work,home",
		"clean":     "a,b",
	} {
		require.NotNil(t, got[title], title)
		assert.Equal(t, want, *got[title], title)
	}
}

func TestMigrationManager_RecordsAppliedVersions(t *testing.T) {
	db := newLegacyDB(t)
	versionFile := filepath.Join(t.TempDir(), "lastVersion")

	require.NoError(t, Execute(db, nil, "1.0.1", versionFile))

	var versions []SchemaVersion
	require.NoError(t, db.Find(&versions).Error)
	require.Len(t, versions, 1)
	assert.Equal(t, "1.0.1", versions[0].Version)

	content, err := os.ReadFile(versionFile)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.1", string(content))

	// 同版本再次运行不会重复执行
	require.NoError(t, Execute(db, nil, "1.0.1", versionFile))
	require.NoError(t, db.Find(&versions).Error)
	assert.Len(t, versions, 1)
}

func TestMigrationManager_SkipsWhenNotNewer(t *testing.T) {
	db := newLegacyDB(t)
	versionFile := filepath.Join(t.TempDir(), "lastVersion")
	require.NoError(t, os.WriteFile(versionFile, []byte("v2.0.0"), 0644))

	require.NoError(t, Execute(db, nil, "1.5.0", versionFile))

	var count int64
	require.NoError(t, db.Model(&SchemaVersion{}).Count(&count).Error)
	assert.Zero(t, count)

	got := tagsByTitle(t, db)
	assert.Nil(t, got["null tags"])
}

func TestMigrationManager_InvalidReferenceVersion(t *testing.T) {
	db := newLegacyDB(t)
	versionFile := filepath.Join(t.TempDir(), "lastVersion")
	require.NoError(t, os.WriteFile(versionFile, []byte("not-a-version"), 0644))

	require.NoError(t, Execute(db, nil, "1.0.1", versionFile))

	got := tagsByTitle(t, db)
	require.NotNil(t, got["null tags"])
	assert.Equal(t, "", *got["null tags"])
}

func TestExecute_NilDB(t *testing.T) {
	assert.Error(t, Execute(nil, nil, "1.0.0", ""))
}

func TestVersionFileFor(t *testing.T) {
	assert.Equal(t, filepath.Join("config", "lastVersion"), VersionFileFor(filepath.Join("config", "config.yaml")))
}
