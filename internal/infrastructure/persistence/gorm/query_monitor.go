package gorm

import (
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "query_monitor:start"

// QueryStats holds aggregated statement counts
type QueryStats struct {
	TotalQueries  int64
	SlowQueries   int64
	FailedQueries int64
}

// QueryMonitor is a GORM plugin that counts statements and logs the slow ones
type QueryMonitor struct {
	logger    *zap.Logger
	threshold time.Duration

	total  atomic.Int64
	slow   atomic.Int64
	failed atomic.Int64
}

// NewQueryMonitor creates a monitor flagging statements slower than threshold
func NewQueryMonitor(threshold time.Duration, logger *zap.Logger) *QueryMonitor {
	if threshold <= 0 {
		threshold = 100 * time.Millisecond
	}
	return &QueryMonitor{logger: logger.Named("sql"), threshold: threshold}
}

// Name implements gorm.Plugin
func (qm *QueryMonitor) Name() string {
	return "query_monitor"
}

// Initialize registers before/after callbacks on every statement kind
func (qm *QueryMonitor) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Query().Before("gorm:query").Register("monitor:before_query", qm.before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("monitor:after_query", qm.after); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:create").Register("monitor:before_create", qm.before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("monitor:after_create", qm.after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("monitor:before_update", qm.before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("monitor:after_update", qm.after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("monitor:before_delete", qm.before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("monitor:after_delete", qm.after); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("monitor:before_row", qm.before); err != nil {
		return err
	}
	return cb.Row().After("gorm:row").Register("monitor:after_row", qm.after)
}

func (qm *QueryMonitor) before(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (qm *QueryMonitor) after(db *gorm.DB) {
	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	duration := time.Since(start)

	qm.total.Add(1)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		qm.failed.Add(1)
	}
	if duration > qm.threshold {
		qm.slow.Add(1)
		qm.logger.Warn("Slow query detected",
			zap.Duration("duration", duration),
			zap.String("table", db.Statement.Table),
			zap.String("sql", db.Statement.SQL.String()),
			zap.Int64("rows", db.RowsAffected),
		)
	}
}

// Stats returns the counters so far
func (qm *QueryMonitor) Stats() QueryStats {
	return QueryStats{
		TotalQueries:  qm.total.Load(),
		SlowQueries:   qm.slow.Load(),
		FailedQueries: qm.failed.Load(),
	}
}
