package database

import (
	"testing"

	"student_performance_backend/internal/config"
	"student_performance_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeedAccounts_CreatesOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_accounts?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	accounts := []config.AccountConfig{
		{Email: "teacher@school.com", Password: "teacher123", Role: "teacher"},
		{Email: "parent@school.com", Password: "parent123", Role: "parent"},
	}
	require.NoError(t, SeedAccounts(db, accounts))
	require.NoError(t, SeedAccounts(db, accounts))

	var users []model.User
	require.NoError(t, db.Order("email").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, model.Parent, users[0].Role)
	assert.Equal(t, model.Teacher, users[1].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[1].Password), []byte("teacher123")))
}

func TestDialector_RejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
