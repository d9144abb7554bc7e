package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/focoapp/foco-backend/database/models"
)

// Importer copies profiles, daily stats and earned-XP history from the
// pre-rewrite Mongo datastore into Postgres. It is a one-shot tool run
// behind a flag, never part of normal serving.
type Importer struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	batchSize int
	stats     ImportStats
}

type ImportStats struct {
	Profiles int
	Stats    int
	Rewards  int
	Skipped  int
	Started  time.Time
}

// mongoProfile mirrors the legacy `profiles` collection shape.
type mongoProfile struct {
	UserID  string `bson:"user_id"`
	XPTotal int    `bson:"xp_total"`
	Level   int    `bson:"level"`
}

// mongoDailyStat mirrors the legacy `daily_stats` collection shape.
type mongoDailyStat struct {
	UserID         string `bson:"user_id"`
	Day            string `bson:"day"`
	MinutesFocused int    `bson:"minutes_focused"`
	TasksDone      int    `bson:"tasks_done"`
	Streak         int    `bson:"streak"`
}

// mongoReward mirrors the legacy `xp_events` collection shape.
type mongoReward struct {
	UserID    string    `bson:"user_id"`
	Amount    int       `bson:"amount"`
	Kind      string    `bson:"kind"`
	CreatedAt time.Time `bson:"created_at"`
}

func NewImporter(pgDB *bun.DB, mongoDB *mongo.Database) *Importer {
	return &Importer{
		pgDB:      pgDB,
		mongoDB:   mongoDB,
		batchSize: 1000,
		stats:     ImportStats{Started: time.Now()},
	}
}

// Connect dials the legacy Mongo instance and returns a handle scoped
// to the given database.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	cleanup := func() {
		_ = client.Disconnect(context.Background())
	}
	return client.Database(database), cleanup, nil
}

// Run imports every legacy collection. Profiles first so the XP
// history and stats always land against an existing profile row.
func (im *Importer) Run(ctx context.Context) error {
	slog.Info("Starting legacy import", slog.String("type", "sys"))

	if err := im.importProfiles(ctx); err != nil {
		return fmt.Errorf("import profiles: %w", err)
	}
	if err := im.importDailyStats(ctx); err != nil {
		return fmt.Errorf("import daily stats: %w", err)
	}
	if err := im.importRewards(ctx); err != nil {
		return fmt.Errorf("import rewards: %w", err)
	}

	slog.Info("Legacy import completed",
		slog.String("type", "sys"),
		slog.Int("profiles", im.stats.Profiles),
		slog.Int("daily_stats", im.stats.Stats),
		slog.Int("rewards", im.stats.Rewards),
		slog.Int("skipped", im.stats.Skipped),
		slog.Duration("took", time.Since(im.stats.Started)))
	return nil
}

func (im *Importer) importProfiles(ctx context.Context) error {
	cur, err := im.mongoDB.Collection("profiles").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query profiles: %w", err)
	}
	defer cur.Close(ctx)

	var batch []*models.UserProfile
	for cur.Next(ctx) {
		var mp mongoProfile
		if err := cur.Decode(&mp); err != nil {
			im.stats.Skipped++
			continue
		}
		if mp.UserID == "" {
			im.stats.Skipped++
			continue
		}
		level := mp.Level
		if level < 1 {
			level = 1
		}
		batch = append(batch, &models.UserProfile{
			UserID:  mp.UserID,
			XPTotal: mp.XPTotal,
			Level:   level,
		})
		if len(batch) >= im.batchSize {
			if err := im.flushProfiles(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return im.flushProfiles(ctx, batch)
	}
	return nil
}

func (im *Importer) flushProfiles(ctx context.Context, batch []*models.UserProfile) error {
	_, err := im.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (user_id) DO UPDATE").
		Set("xp_total = EXCLUDED.xp_total").
		Set("level = EXCLUDED.level").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert profiles: %w", err)
	}
	im.stats.Profiles += len(batch)
	return nil
}

func (im *Importer) importDailyStats(ctx context.Context) error {
	cur, err := im.mongoDB.Collection("daily_stats").Find(ctx, bson.D{})
	if err != nil {
		slog.Warn("daily_stats collection not found or query failed; skipping",
			slog.String("type", "sys"))
		return nil
	}
	defer cur.Close(ctx)

	var batch []*models.DailyStat
	for cur.Next(ctx) {
		var ms mongoDailyStat
		if err := cur.Decode(&ms); err != nil {
			im.stats.Skipped++
			continue
		}
		if ms.UserID == "" || ms.Day == "" {
			im.stats.Skipped++
			continue
		}
		batch = append(batch, &models.DailyStat{
			UserID:         ms.UserID,
			Day:            ms.Day,
			MinutesFocused: ms.MinutesFocused,
			TasksDone:      ms.TasksDone,
			Streak:         ms.Streak,
		})
		if len(batch) >= im.batchSize {
			if err := im.flushDailyStats(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return im.flushDailyStats(ctx, batch)
	}
	return nil
}

func (im *Importer) flushDailyStats(ctx context.Context, batch []*models.DailyStat) error {
	// Re-running the import must not double the counters, so the
	// legacy values replace rather than add.
	_, err := im.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (user_id, day) DO UPDATE").
		Set("minutes_focused = EXCLUDED.minutes_focused").
		Set("tasks_done = EXCLUDED.tasks_done").
		Set("streak = EXCLUDED.streak").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	im.stats.Stats += len(batch)
	return nil
}

func (im *Importer) importRewards(ctx context.Context) error {
	cur, err := im.mongoDB.Collection("xp_events").Find(ctx, bson.D{})
	if err != nil {
		slog.Warn("xp_events collection not found or query failed; skipping",
			slog.String("type", "sys"))
		return nil
	}
	defer cur.Close(ctx)

	var batch []*models.Reward
	for cur.Next(ctx) {
		var mr mongoReward
		if err := cur.Decode(&mr); err != nil {
			im.stats.Skipped++
			continue
		}
		if mr.UserID == "" || mr.Amount == 0 {
			im.stats.Skipped++
			continue
		}
		entryType := models.RewardTypeEarn
		if mr.Kind == "spend" {
			entryType = models.RewardTypeSpend
		}
		batch = append(batch, &models.Reward{
			UserID:    mr.UserID,
			Type:      entryType,
			Amount:    mr.Amount,
			Meta:      map[string]interface{}{"legacy": true},
			CreatedAt: mr.CreatedAt,
		})
		if len(batch) >= im.batchSize {
			if err := im.flushRewards(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return im.flushRewards(ctx, batch)
	}
	return nil
}

func (im *Importer) flushRewards(ctx context.Context, batch []*models.Reward) error {
	_, err := im.pgDB.NewInsert().Model(&batch).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert rewards: %w", err)
	}
	im.stats.Rewards += len(batch)
	return nil
}
