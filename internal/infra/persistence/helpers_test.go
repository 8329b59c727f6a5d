package persistence

import (
	"fmt"
	"testing"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&entity.Creature{},
		&entity.OutboxEvent{},
		&entity.AuditLog{},
		&entity.IdempotencyKey{},
	))

	db := &DB{Conn: gdb}
	t.Cleanup(db.Close)
	return db
}
