package db

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"threadline/internal/models"
	"threadline/internal/store"
)

// Open connects to PostgreSQL and migrates the schema.
func Open(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info().Msg("database connection established")

	// Auto Migrate
	err = conn.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("database migration completed")
	return conn, nil
}

var defaultCommunities = []models.Community{
	{Name: "general", Description: "Anything goes"},
	{Name: "programming", Description: "Code, tools and the craft"},
	{Name: "showcase", Description: "Things you made"},
	{Name: "meta", Description: "About this board"},
}

// SeedCommunities creates the default communities on an empty store.
func SeedCommunities(ctx context.Context, s store.CommunityStore, log zerolog.Logger) error {
	existing, err := s.ListCommunities(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Debug().Int("count", len(existing)).Msg("communities already seeded, skipping")
		return nil
	}

	for _, c := range defaultCommunities {
		community := c
		if err := s.CreateCommunity(ctx, &community); err != nil {
			log.Warn().Err(err).Str("name", c.Name).Msg("failed to create community")
		}
	}
	log.Info().Int("count", len(defaultCommunities)).Msg("initial communities created")
	return nil
}
