package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shinyyama/contest-backend/internal/config"
	"github.com/shinyyama/contest-backend/internal/db"
	"github.com/shinyyama/contest-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	rewards := []model.XPRewardConfig{
		{Action: model.ActionDailyCheckin, XPAmount: 10, DailyLimit: true, Enabled: true},
		{Action: model.ActionSubmitEntry, XPAmount: 20, Enabled: true},
		{Action: model.ActionGetReaction, XPAmount: 5, OncePerRef: true, Enabled: true},
		{Action: model.ActionContestFirst, XPAmount: 200, Enabled: true},
		{Action: model.ActionContestSecond, XPAmount: 150, Enabled: true},
		{Action: model.ActionContestThird, XPAmount: 100, Enabled: true},
	}
	if err := upsert(gdb, &rewards); err != nil {
		return fmt.Errorf("seed xp rewards: %w", err)
	}

	levels := []model.LevelConfig{
		{Level: 1, XPRequired: 0},
		{Level: 2, XPRequired: 100},
		{Level: 3, XPRequired: 250},
		{Level: 4, XPRequired: 450},
		{Level: 5, XPRequired: 700},
		{Level: 6, XPRequired: 1000},
		{Level: 7, XPRequired: 1400},
		{Level: 8, XPRequired: 1900},
		{Level: 9, XPRequired: 2500},
		{Level: 10, XPRequired: 3200},
	}
	if err := upsert(gdb, &levels); err != nil {
		return fmt.Errorf("seed level configs: %w", err)
	}

	levelRewards := []model.LevelReward{
		{Level: 2, RewardType: model.LevelRewardPoints, RewardValue: 10, AutoGrant: true},
		{Level: 3, RewardType: model.LevelRewardPoints, RewardValue: 20, AutoGrant: true},
		{Level: 3, RewardType: model.LevelRewardBadge, BadgeName: "駆け出しクリエイター", BadgeIcon: "🌱", AutoGrant: true},
		{Level: 5, RewardType: model.LevelRewardPoints, RewardValue: 50, AutoGrant: true},
		{Level: 5, RewardType: model.LevelRewardBadge, BadgeName: "常連クリエイター", BadgeIcon: "⭐", AutoGrant: true},
		{Level: 10, RewardType: model.LevelRewardPoints, RewardValue: 200, AutoGrant: true},
		{Level: 10, RewardType: model.LevelRewardBadge, BadgeName: "マスタークリエイター", BadgeIcon: "👑", AutoGrant: true},
	}
	var cnt int64
	if err := gdb.Model(&model.LevelReward{}).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		if err := gdb.Create(&levelRewards).Error; err != nil {
			return fmt.Errorf("seed level rewards: %w", err)
		}
	}

	log.Printf("seeded %d xp rewards, %d levels", len(rewards), len(levels))
	return nil
}

func upsert(gdb *gorm.DB, rows interface{}) error {
	return gdb.Clauses(clause.OnConflict{UpdateAll: true}).Create(rows).Error
}
