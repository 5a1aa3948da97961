package gorm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMonitored(t *testing.T, monitor *QueryMonitor) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&PriceBaselineModel{}))
	require.NoError(t, db.Use(monitor))
	return db
}

func TestQueryMonitor_CountsStatements(t *testing.T) {
	monitor := NewQueryMonitor(time.Hour, zap.NewNop())
	db := openMonitored(t, monitor)

	require.NoError(t, db.Create(&PriceBaselineModel{Category: "produce", Store: "A", Unit: "kg", PricePerUnit: 2}).Error)

	var models []PriceBaselineModel
	require.NoError(t, db.Find(&models).Error)

	var missing PriceBaselineModel
	err := db.First(&missing, "category = ?", "nothing").Error
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	stats := monitor.Stats()
	assert.Equal(t, int64(3), stats.TotalQueries)
	assert.Zero(t, stats.SlowQueries)
	assert.Zero(t, stats.FailedQueries)
}

func TestQueryMonitor_LogsSlowStatements(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	monitor := NewQueryMonitor(time.Nanosecond, zap.New(core))
	db := openMonitored(t, monitor)

	var models []PriceBaselineModel
	require.NoError(t, db.Find(&models).Error)

	assert.Equal(t, int64(1), monitor.Stats().SlowQueries)
	entries := logs.FilterMessage("Slow query detected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "price_baselines", entries[0].ContextMap()["table"])
}
