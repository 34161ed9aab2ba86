package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/repository/sqlitetest"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := sqlitetest.Open(t)
	require.NoError(t, AutoMigrate(db))
	return db
}
