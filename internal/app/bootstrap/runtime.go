package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	appconfig "github.com/legendmotors/skywell-leads/internal/config"
	"github.com/legendmotors/skywell-leads/internal/content"
	httpmiddleware "github.com/legendmotors/skywell-leads/internal/http/middleware"
	"github.com/legendmotors/skywell-leads/internal/leads"
	"github.com/legendmotors/skywell-leads/internal/newsletter"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

const storeTimeout = 10 * time.Second

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// OpenPostgresPool connects the pgx pool used by the lead store.
func OpenPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// OpenSQL opens a database/sql handle on the lib/pq driver.
func OpenSQL(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open sql: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: ping sql: %w", err)
	}
	return db, nil
}

// OpenMongo connects to MongoDB and verifies the connection.
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("bootstrap: ping mongo: %w", err)
	}
	return client, nil
}

// BuildLeadStore picks the lead store named by LEAD_STORE.
func BuildLeadStore(cfg *appconfig.Config, pool *pgxpool.Pool, db *mongo.Database) (leads.Store, error) {
	switch cfg.LeadStore {
	case "", "memory":
		return leads.NewInMemoryStore(), nil
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: LEAD_STORE=postgres requires DATABASE_URL")
		}
		return leads.NewPostgresStore(pool), nil
	case "mongo":
		if db == nil {
			return nil, fmt.Errorf("bootstrap: LEAD_STORE=mongo requires MONGO_URI")
		}
		return leads.NewMongoStore(db, storeTimeout), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown LEAD_STORE %q", cfg.LeadStore)
	}
}

// BuildContentStores uses MongoDB when available and memory otherwise.
func BuildContentStores(db *mongo.Database) (content.Store[content.Blog], content.Store[content.Offer]) {
	if db == nil {
		return content.NewMemoryStore[content.Blog](), content.NewMemoryStore[content.Offer]()
	}
	return content.NewMongoStore[content.Blog](db, content.CollectionBlogs, storeTimeout),
		content.NewMongoStore[content.Offer](db, content.CollectionOffers, storeTimeout)
}

// BuildNewsletterStore uses Postgres when available and memory otherwise.
func BuildNewsletterStore(db *sql.DB) newsletter.Store {
	if db == nil {
		return newsletter.NewMemoryStore()
	}
	return newsletter.NewSQLStore(db)
}

// BuildSubmitLimiter shares the limit across instances through Redis when it
// is configured.
func BuildSubmitLimiter(cfg *appconfig.Config, redisClient *redis.Client) httpmiddleware.Limiter {
	if redisClient != nil {
		return httpmiddleware.NewRedisRateLimiter(redisClient, cfg.SubmitRatePerMinute, time.Minute)
	}
	return httpmiddleware.NewPerMinuteLimiter(cfg.SubmitRatePerMinute)
}
