package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/postgres"
	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
	"github.com/sean-rowe/city-explorer-service/internal/infrastructure/database"
)

// errDatabaseUnavailable is returned by every favorites operation when the
// service started without a database connection.
var errDatabaseUnavailable = errors.New("favorites database is not available")

// initFavoritesRepository connects to PostgreSQL, applies migrations when
// configured to, and returns the favorites repository. Without a database
// the returned repository fails every call.
func (a *App) initFavoritesRepository(ctx context.Context) ports.FavoritesRepository {
	dbConfig := a.databaseConfig()

	if a.cfg.Database.AutoMigrate {
		if err := a.migrate(dbConfig); err != nil {
			a.logger.Error("failed to apply migrations", zap.Error(err))
		}
	}

	pool, err := database.NewPool(ctx, dbConfig, a.logger)

	if err != nil {
		a.logger.Warn("failed to connect to database, favorites are unavailable", zap.Error(err))

		return unavailableRepository{err: fmt.Errorf("%w: %v", errDatabaseUnavailable, err)}
	}

	a.pool = pool

	return postgres.NewFavoritesRepository(pool, a.logger)
}

func (a *App) databaseConfig() database.Config {
	return database.Config{
		Host:                  a.cfg.Database.Host,
		Port:                  a.cfg.Database.Port,
		User:                  a.cfg.Database.User,
		Password:              a.cfg.Database.Password,
		Database:              a.cfg.Database.Database,
		SSLMode:               a.cfg.Database.SSLMode,
		MaxConnections:        a.cfg.Database.MaxConnections,
		MinConnections:        a.cfg.Database.MinConnections,
		ConnectionMaxLifetime: a.cfg.Database.ConnectionMaxLifetime,
	}
}

func (a *App) migrate(cfg database.Config) error {
	db, err := database.OpenSQL(cfg)

	if err != nil {
		return err
	}

	defer db.Close()

	return database.RunMigrations(db, a.logger)
}

// unavailableRepository stands in for the PostgreSQL repository when the
// database could not be reached at startup.
type unavailableRepository struct {
	err error
}

var _ ports.FavoritesRepository = unavailableRepository{}

func (u unavailableRepository) ListCities(context.Context, int64) ([]domain.FavoriteCity, error) {
	return nil, u.err
}

func (u unavailableRepository) CreateCity(context.Context, int64, ports.NewFavoriteCity) (domain.FavoriteCity, bool, error) {
	return domain.FavoriteCity{}, false, u.err
}

func (u unavailableRepository) DeleteCity(context.Context, int64, string) error {
	return u.err
}

func (u unavailableRepository) ListPlaces(context.Context, int64) ([]domain.FavoritePlace, error) {
	return nil, u.err
}

func (u unavailableRepository) CreatePlace(context.Context, int64, ports.NewFavoritePlace) (domain.FavoritePlace, bool, error) {
	return domain.FavoritePlace{}, false, u.err
}

func (u unavailableRepository) DeletePlace(context.Context, int64, string) error {
	return u.err
}
