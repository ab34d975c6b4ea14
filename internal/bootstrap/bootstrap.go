// Package bootstrap builds the store and identity provider the server runs
// on from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/maasin/byahenow/internal/config"
	"github.com/maasin/byahenow/internal/identity"
	"github.com/maasin/byahenow/pkg/cache"
	"github.com/maasin/byahenow/pkg/database"
	"github.com/maasin/byahenow/pkg/kvstore"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
)

// Resources holds the external collaborators and how to release them
type Resources struct {
	Store    kvstore.Store
	Provider identity.Provider
	Backend  string

	// set only for the backend that uses them
	DB    *sql.DB
	Redis *redis.Client

	firebase *firebase.App
	closers  []func() error
	logger   *logger.Logger
}

// Durable reports whether the store survives a restart
func (r *Resources) Durable() bool {
	return r.Backend != config.StoreMemory
}

// Open connects the configured store and identity provider
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Resources, error) {
	r := &Resources{Backend: cfg.Store.Backend, logger: log.Named("bootstrap")}

	if err := r.openStore(ctx, cfg); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.openProvider(ctx, cfg); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases everything Open acquired, newest first
func (r *Resources) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

func (r *Resources) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

func (r *Resources) openStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		r.Store = kvstore.NewMemoryStore()

	case config.StoreBolt:
		s, err := kvstore.NewBoltStore(cfg.Store.BoltPath)
		if err != nil {
			return err
		}
		r.Store = s
		r.onClose(s.Close)

	case config.StoreRedis:
		client, err := cache.NewRedisClient(ctx, cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxRetries:  cfg.Redis.MaxRetries,
			PoolSize:    cfg.Redis.PoolSize,
			MinIdleConn: cfg.Redis.MinIdleConn,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		r.Redis = client
		r.Store = kvstore.NewRedisStore(client, cfg.Store.Namespace)
		r.onClose(func() error { return cache.Close(client) })

	case config.StorePostgres:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.Name,
			SSLMode:     cfg.Database.SSLMode,
			MaxConns:    cfg.Database.MaxConnections,
			MaxIdle:     cfg.Database.MaxIdleConns,
			MaxLifetime: cfg.Database.MaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		r.onClose(db.Close)
		if err := database.Migrate(db, kvstore.Migrations, kvstore.MigrationsDir); err != nil {
			return err
		}
		r.DB = db
		r.Store = kvstore.NewPostgresStore(db)

	case config.StoreFirestore:
		app, err := r.firebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("failed to create Firestore client: %w", err)
		}
		r.Store = kvstore.NewFirestoreStore(client, cfg.Firebase.Collection)
		r.onClose(client.Close)

	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	r.logger.Info("Key-value store ready", logger.String("backend", cfg.Store.Backend))
	return nil
}

func (r *Resources) openProvider(ctx context.Context, cfg *config.Config) error {
	switch cfg.Auth.Provider {
	case config.AuthLocal:
		p, err := identity.NewLocalProvider(r.Store, identity.LocalConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.JWTIssuer,
			Expiry: cfg.Auth.JWTExpiry,
		})
		if err != nil {
			return err
		}
		r.Provider = p

	case config.AuthFirebase:
		app, err := r.firebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return err
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return fmt.Errorf("failed to create Firebase auth client: %w", err)
		}
		r.Provider = identity.NewFirebaseProvider(client)

	default:
		return fmt.Errorf("unknown identity provider %q", cfg.Auth.Provider)
	}

	r.logger.Info("Identity provider ready", logger.String("provider", cfg.Auth.Provider))
	return nil
}

// firebaseApp initializes the Firebase app once; the store and the
// provider may both need it
func (r *Resources) firebaseApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	if r.firebase != nil {
		return r.firebase, nil
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	r.firebase = app
	return app, nil
}
