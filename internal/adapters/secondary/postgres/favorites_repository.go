// Package postgres stores user favorites in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

const (
	citiesTable = "favorite_cities"
	placesTable = "favorite_places"
)

var (
	cityColumns  = []string{"id", "user_id", "city_name", "latitude", "longitude", "created_at", "updated_at"}
	placeColumns = []string{
		"id", "user_id", "fsq_id", "name", "address", "latitude", "longitude",
		"photo_url", "category", "category_icon", "created_at", "updated_at",
	}
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// FavoritesRepository implements ports.FavoritesRepository.
type FavoritesRepository struct {
	db     DB
	sql    squirrel.StatementBuilderType
	logger *zap.Logger
}

var _ ports.FavoritesRepository = (*FavoritesRepository)(nil)

// NewFavoritesRepository creates a repository over db.
func NewFavoritesRepository(db DB, logger *zap.Logger) *FavoritesRepository {
	return &FavoritesRepository{
		db:     db,
		sql:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger,
	}
}

func (r *FavoritesRepository) startSpan(ctx context.Context, name string, userID int64) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("postgres").Start(ctx, name)

	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.Int64("db.user_id", userID),
	)

	return ctx, span
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

// ListCities returns the user's cities ordered by name.
func (r *FavoritesRepository) ListCities(ctx context.Context, userID int64) ([]domain.FavoriteCity, error) {
	ctx, span := r.startSpan(ctx, "FavoritesRepository.ListCities", userID)
	defer span.End()

	query, args, err := r.sql.Select(cityColumns...).
		From(citiesTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("city_name ASC").
		ToSql()

	if err != nil {
		return nil, fail(span, fmt.Errorf("build list cities query: %w", err))
	}

	rows, err := r.db.Query(ctx, query, args...)

	if err != nil {
		return nil, fail(span, fmt.Errorf("list favorite cities: %w", err))
	}

	defer rows.Close()

	cities := make([]domain.FavoriteCity, 0)

	for rows.Next() {
		city, err := scanCity(rows)

		if err != nil {
			return nil, fail(span, fmt.Errorf("scan favorite city: %w", err))
		}

		cities = append(cities, city)
	}

	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate favorite cities: %w", err))
	}

	return cities, nil
}

// CreateCity inserts the city or, when the user already has one with that name,
// returns the existing row with created=false.
func (r *FavoritesRepository) CreateCity(ctx context.Context, userID int64, city ports.NewFavoriteCity) (domain.FavoriteCity, bool, error) {
	ctx, span := r.startSpan(ctx, "FavoritesRepository.CreateCity", userID)
	defer span.End()

	query, args, err := r.sql.Insert(citiesTable).
		Columns("user_id", "city_name", "latitude", "longitude").
		Values(userID, city.CityName, city.Latitude, city.Longitude).
		Suffix("ON CONFLICT (user_id, city_name) DO NOTHING RETURNING " + strings.Join(cityColumns, ", ")).
		ToSql()

	if err != nil {
		return domain.FavoriteCity{}, false, fail(span, fmt.Errorf("build insert city query: %w", err))
	}

	selectQuery, selectArgs, err := r.sql.Select(cityColumns...).
		From(citiesTable).
		Where(squirrel.Eq{"user_id": userID, "city_name": city.CityName}).
		ToSql()

	if err != nil {
		return domain.FavoriteCity{}, false, fail(span, fmt.Errorf("build select city query: %w", err))
	}

	row, created, err := getOrCreate(ctx, r.db, statement{query, args}, statement{selectQuery, selectArgs}, scanCity)

	if err != nil {
		return domain.FavoriteCity{}, false, fail(span, fmt.Errorf("store favorite city: %w", err))
	}

	if created {
		r.logger.Debug("favorite city created", zap.Int64("user_id", userID), zap.String("city_name", city.CityName))
	}

	span.SetAttributes(attribute.Bool("favorites.existing", !created))

	return row, created, nil
}

// DeleteCity removes the user's city by name.
func (r *FavoritesRepository) DeleteCity(ctx context.Context, userID int64, cityName string) error {
	ctx, span := r.startSpan(ctx, "FavoritesRepository.DeleteCity", userID)
	defer span.End()

	return r.delete(ctx, span, citiesTable, squirrel.Eq{"user_id": userID, "city_name": cityName})
}

// ListPlaces returns the user's places, most recently saved first.
func (r *FavoritesRepository) ListPlaces(ctx context.Context, userID int64) ([]domain.FavoritePlace, error) {
	ctx, span := r.startSpan(ctx, "FavoritesRepository.ListPlaces", userID)
	defer span.End()

	query, args, err := r.sql.Select(placeColumns...).
		From(placesTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, fail(span, fmt.Errorf("build list places query: %w", err))
	}

	rows, err := r.db.Query(ctx, query, args...)

	if err != nil {
		return nil, fail(span, fmt.Errorf("list favorite places: %w", err))
	}

	defer rows.Close()

	places := make([]domain.FavoritePlace, 0)

	for rows.Next() {
		place, err := scanPlace(rows)

		if err != nil {
			return nil, fail(span, fmt.Errorf("scan favorite place: %w", err))
		}

		places = append(places, place)
	}

	if err := rows.Err(); err != nil {
		return nil, fail(span, fmt.Errorf("iterate favorite places: %w", err))
	}

	return places, nil
}

// CreatePlace inserts the place or returns the user's existing row for that fsq_id.
func (r *FavoritesRepository) CreatePlace(ctx context.Context, userID int64, place ports.NewFavoritePlace) (domain.FavoritePlace, bool, error) {
	ctx, span := r.startSpan(ctx, "FavoritesRepository.CreatePlace", userID)
	defer span.End()

	query, args, err := r.sql.Insert(placesTable).
		Columns("user_id", "fsq_id", "name", "address", "latitude", "longitude", "photo_url", "category", "category_icon").
		Values(userID, place.FsqID, place.Name, place.Address, place.Latitude, place.Longitude,
			place.PhotoURL, place.Category, place.CategoryIcon).
		Suffix("ON CONFLICT (user_id, fsq_id) DO NOTHING RETURNING " + strings.Join(placeColumns, ", ")).
		ToSql()

	if err != nil {
		return domain.FavoritePlace{}, false, fail(span, fmt.Errorf("build insert place query: %w", err))
	}

	selectQuery, selectArgs, err := r.sql.Select(placeColumns...).
		From(placesTable).
		Where(squirrel.Eq{"user_id": userID, "fsq_id": place.FsqID}).
		ToSql()

	if err != nil {
		return domain.FavoritePlace{}, false, fail(span, fmt.Errorf("build select place query: %w", err))
	}

	row, created, err := getOrCreate(ctx, r.db, statement{query, args}, statement{selectQuery, selectArgs}, scanPlace)

	if err != nil {
		return domain.FavoritePlace{}, false, fail(span, fmt.Errorf("store favorite place: %w", err))
	}

	if created {
		r.logger.Debug("favorite place created", zap.Int64("user_id", userID), zap.String("fsq_id", place.FsqID))
	}

	span.SetAttributes(attribute.Bool("favorites.existing", !created))

	return row, created, nil
}

// DeletePlace removes the user's place by Foursquare ID.
func (r *FavoritesRepository) DeletePlace(ctx context.Context, userID int64, fsqID string) error {
	ctx, span := r.startSpan(ctx, "FavoritesRepository.DeletePlace", userID)
	defer span.End()

	return r.delete(ctx, span, placesTable, squirrel.Eq{"user_id": userID, "fsq_id": fsqID})
}

// createAttempts bounds the insert/select cycle of getOrCreate. A second
// attempt covers a row deleted between the conflicting insert and the select.
const createAttempts = 2

type statement struct {
	sql  string
	args []any
}

// getOrCreate runs insert (ON CONFLICT DO NOTHING RETURNING) and, on conflict,
// loads the existing row with lookup.
func getOrCreate[T any](ctx context.Context, db DB, insert, lookup statement, scan func(pgx.Row) (T, error)) (T, bool, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		row, err := scan(db.QueryRow(ctx, insert.sql, insert.args...))

		if err == nil {
			return row, true, nil
		}

		if !errors.Is(err, pgx.ErrNoRows) {
			return zero, false, fmt.Errorf("insert: %w", err)
		}

		row, err = scan(db.QueryRow(ctx, lookup.sql, lookup.args...))

		if err == nil {
			return row, false, nil
		}

		if !errors.Is(err, pgx.ErrNoRows) || attempt == createAttempts {
			return zero, false, fmt.Errorf("load existing: %w", err)
		}
	}
}

func (r *FavoritesRepository) delete(ctx context.Context, span trace.Span, table string, where squirrel.Eq) error {
	query, args, err := r.sql.Delete(table).Where(where).ToSql()

	if err != nil {
		return fail(span, fmt.Errorf("build delete query: %w", err))
	}

	tag, err := r.db.Exec(ctx, query, args...)

	if err != nil {
		return fail(span, fmt.Errorf("delete from %s: %w", table, err))
	}

	if tag.RowsAffected() == 0 {
		return ports.ErrFavoriteNotFound
	}

	return nil
}

func scanCity(row pgx.Row) (domain.FavoriteCity, error) {
	var c domain.FavoriteCity

	err := row.Scan(&c.ID, &c.UserID, &c.CityName, &c.Latitude, &c.Longitude, &c.CreatedAt, &c.UpdatedAt)

	return c, err
}

func scanPlace(row pgx.Row) (domain.FavoritePlace, error) {
	var p domain.FavoritePlace

	err := row.Scan(
		&p.ID, &p.UserID, &p.FsqID, &p.Name, &p.Address, &p.Latitude, &p.Longitude,
		&p.PhotoURL, &p.Category, &p.CategoryIcon, &p.CreatedAt, &p.UpdatedAt,
	)

	return p, err
}
