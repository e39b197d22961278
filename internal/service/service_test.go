package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Each test gets its own in-memory database to avoid cross-test interference.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

type testEnv struct {
	db         *gorm.DB
	ledger     LedgerService
	xp         XPService
	reactions  ReactionService
	settlement SettlementService
	withdrawal WithdrawalService
	notify     NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	ledger := NewLedgerService(userRepo)
	notify := NewNotificationService(repository.NewNotificationRepository(db))
	xp := NewXPService(db, repository.NewXPRepository(db), userRepo, ledger, notify, 1)
	contestRepo := repository.NewContestRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	return &testEnv{
		db:         db,
		ledger:     ledger,
		xp:         xp,
		reactions:  NewReactionService(db, reactionRepo, contestRepo, ledger, xp, 1, 1),
		settlement: NewSettlementService(db, contestRepo, reactionRepo, ledger, xp, notify, 1),
		withdrawal: NewWithdrawalService(db, repository.NewWithdrawalRepository(db), ledger, notify, 100, 1),
		notify:     notify,
	}
}

func (e *testEnv) seedLevels(t *testing.T) {
	t.Helper()
	levels := []model.LevelConfig{
		{Level: 1, XPRequired: 0},
		{Level: 2, XPRequired: 100},
		{Level: 3, XPRequired: 250},
	}
	require.NoError(t, e.db.Create(&levels).Error)
}

func (e *testEnv) seedRewardConfigs(t *testing.T) {
	t.Helper()
	rewards := []model.XPRewardConfig{
		{Action: model.ActionDailyCheckin, XPAmount: 10, DailyLimit: true, Enabled: true},
		{Action: model.ActionGetReaction, XPAmount: 5, OncePerRef: true, Enabled: true},
		{Action: model.ActionContestFirst, XPAmount: 200, Enabled: true},
		{Action: model.ActionContestSecond, XPAmount: 150, Enabled: true},
		{Action: model.ActionContestThird, XPAmount: 100, Enabled: true},
	}
	require.NoError(t, e.db.Create(&rewards).Error)
}

func (e *testEnv) createUser(t *testing.T, uid string, balance int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.User{UID: uid, PointsBalance: balance, Level: 1}).Error)
}

func (e *testEnv) createContest(t *testing.T, endedAgo time.Duration) *model.Contest {
	t.Helper()
	c := &model.Contest{Title: "weekly theme", EndDate: time.Now().Add(-endedAgo)}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) createEntry(t *testing.T, contestID uint64, owner string, createdAt time.Time) *model.Entry {
	t.Helper()
	entry := &model.Entry{ContestID: contestID, UserUID: owner, Title: "entry", Status: model.EntryStatusApproved}
	require.NoError(t, e.db.Create(entry).Error)
	if !createdAt.IsZero() {
		require.NoError(t, e.db.Model(entry).Update("created_at", createdAt).Error)
	}
	return entry
}

func (e *testEnv) addVotes(t *testing.T, entryID uint64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		re := model.Reaction{EntryID: entryID, UserUID: fmt.Sprintf("voter-%d-%d", entryID, i), Type: model.ReactionLike}
		require.NoError(t, e.db.Create(&re).Error)
	}
}

func (e *testEnv) balance(t *testing.T, uid string) int64 {
	t.Helper()
	var u model.User
	require.NoError(t, e.db.Where("uid = ?", uid).First(&u).Error)
	return u.PointsBalance
}

func (e *testEnv) user(t *testing.T, uid string) *model.User {
	t.Helper()
	var u model.User
	require.NoError(t, e.db.Where("uid = ?", uid).First(&u).Error)
	return &u
}
