// Package db provides a PostgreSQL implementation of store.Store built on
// pgxpool, with SQL assembled by squirrel.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/kosher-appstore/appstore-server/internal/otel"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	appColumns = []string{
		"id::text", "package_name", "COALESCE(play_url, '')", "display_name",
		"COALESCE(short_description, '')", "COALESCE(full_description, '')", "COALESCE(icon_url, '')",
		"COALESCE(current_version_name, '')", "COALESCE(current_version_code, 0)", "created_at", "updated_at",
	}
	versionColumns = []string{
		"id::text", "app_id::text", "version_name", "version_code", "COALESCE(checksum_sha256, '')", "created_at",
	}
	sourceColumns = []string{
		"id::text", "name", "type", "base_url", "enabled", "priority", "created_at", "updated_at",
	}
	linkColumns = []string{
		"l.id::text", "l.app_version_id::text", "l.app_source_id::text", "l.download_url",
		"l.last_checked_at", "l.last_status", "l.created_at",
	}
	deviceColumns = []string{
		"id::text", "COALESCE(friendly_name, '')", "first_seen_at", "last_seen_at", "COALESCE(last_ip, '')",
	}
	installColumns = []string{
		"id::text", "device_id::text", "app_id::text", "COALESCE(app_version_id::text, '')", "status",
		"created_at", "updated_at",
	}
	eventColumns = []string{
		"id::text", "device_id::text", "app_id::text", "COALESCE(app_version_id::text, '')",
		"COALESCE(app_source_id::text, '')", "event_type", "COALESCE(error_message, '')", "created_at",
	}
)

// options holds configuration options for the database store
type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option is a functional option for configuring the database store
type Option func(*options) error

// WithConnectionPool sets the pool the store runs on. The caller closes it.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer. If not set, tracing is disabled.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// dbStore implements store.Store on PostgreSQL
type dbStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ store.Store = (*dbStore)(nil)

// New creates a database-backed store
func New(opts ...Option) (store.Store, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	return &dbStore{pool: o.pool, tracer: o.tracer}, nil
}

func (s *dbStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (s *dbStore) UpsertDevice(ctx context.Context, id, lastIP string, seenAt time.Time) (*store.Device, error) {
	ctx, span := s.startSpan(ctx, "dbStore.UpsertDevice", trace.WithAttributes(otel.AttrDeviceID.String(id)))
	defer span.End()

	q := psql.Insert("devices").
		Columns("id", "first_seen_at", "last_seen_at", "last_ip").
		Values(id, seenAt, seenAt, nullable(lastIP)).
		Suffix("ON CONFLICT (id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at, last_ip = EXCLUDED.last_ip").
		Suffix("RETURNING " + strings.Join(deviceColumns, ", "))

	d, err := getOne(ctx, s.pool, q, "device", scanDevice)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return d, nil
}

func (s *dbStore) GetDevice(ctx context.Context, id string) (*store.Device, error) {
	ctx, span := s.startSpan(ctx, "dbStore.GetDevice", trace.WithAttributes(otel.AttrDeviceID.String(id)))
	defer span.End()

	if !validID(id) {
		return nil, fmt.Errorf("device %s: %w", id, store.ErrNotFound)
	}
	q := psql.Select(deviceColumns...).From("devices").Where(sq.Eq{"id": id})
	d, err := getOne(ctx, s.pool, q, "device", scanDevice)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return d, nil
}

func (s *dbStore) TouchDevice(ctx context.Context, id string, seenAt time.Time) error {
	ctx, span := s.startSpan(ctx, "dbStore.TouchDevice", trace.WithAttributes(otel.AttrDeviceID.String(id)))
	defer span.End()

	if !validID(id) {
		return nil
	}
	q := psql.Update("devices").Set("last_seen_at", seenAt).Where(sq.Eq{"id": id})
	if err := exec(ctx, s.pool, q, "device"); err != nil {
		otel.RecordError(span, err)
		return err
	}
	return nil
}

func (s *dbStore) ListApps(ctx context.Context) ([]store.App, error) {
	ctx, span := s.startSpan(ctx, "dbStore.ListApps")
	defer span.End()

	q := psql.Select(appColumns...).From("apps").OrderBy("display_name", "id")
	apps, err := getAll(ctx, s.pool, q, "apps", scanApp)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(apps)))
	return apps, nil
}

func (s *dbStore) ListAppStats(ctx context.Context) ([]store.AppStats, error) {
	ctx, span := s.startSpan(ctx, "dbStore.ListAppStats")
	defer span.End()

	cols := append(append([]string{}, appColumns...),
		"(SELECT COUNT(*) FROM app_versions v WHERE v.app_id = apps.id)")
	q := psql.Select(cols...).From("apps").OrderBy("updated_at DESC", "id")

	stats, err := getAll(ctx, s.pool, q, "apps", func(row scanner) (store.AppStats, error) {
		var st store.AppStats
		err := row.Scan(append(appDest(&st.App), &st.VersionCount)...)
		return st, err
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(stats)))
	return stats, nil
}

func (s *dbStore) GetApp(ctx context.Context, id string) (*store.App, error) {
	ctx, span := s.startSpan(ctx, "dbStore.GetApp", trace.WithAttributes(otel.AttrAppID.String(id)))
	defer span.End()

	if !validID(id) {
		return nil, fmt.Errorf("app %s: %w", id, store.ErrNotFound)
	}
	q := psql.Select(appColumns...).From("apps").Where(sq.Eq{"id": id})
	app, err := getOne(ctx, s.pool, q, "app", scanApp)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return app, nil
}

func (s *dbStore) GetAppByPackage(ctx context.Context, packageName string) (*store.App, error) {
	ctx, span := s.startSpan(ctx, "dbStore.GetAppByPackage", trace.WithAttributes(otel.AttrPackageName.String(packageName)))
	defer span.End()

	q := psql.Select(appColumns...).From("apps").Where(sq.Eq{"package_name": packageName})
	app, err := getOne(ctx, s.pool, q, "app", scanApp)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return app, nil
}

func (s *dbStore) CreateApp(ctx context.Context, params store.CreateAppParams) (*store.App, error) {
	ctx, span := s.startSpan(ctx, "dbStore.CreateApp",
		trace.WithAttributes(otel.AttrPackageName.String(params.App.PackageName)))
	defer span.End()

	var created *store.App
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		a := params.App
		q := psql.Insert("apps").
			Columns("package_name", "play_url", "display_name", "short_description", "full_description",
				"icon_url", "current_version_name", "current_version_code").
			Values(a.PackageName, nullable(a.PlayURL), a.DisplayName, nullable(a.ShortDescription),
				nullable(a.FullDescription), nullable(a.IconURL), nullable(a.CurrentVersionName),
				nullableCode(a.CurrentVersionName, a.CurrentVersionCode)).
			Suffix("RETURNING " + strings.Join(appColumns, ", "))

		app, err := getOne(ctx, tx, q, "app", scanApp)
		if err != nil {
			return err
		}
		created = app

		for _, v := range params.Versions {
			vq := psql.Insert("app_versions").
				Columns("app_id", "version_name", "version_code").
				Values(app.ID, v.VersionName, v.VersionCode).
				Suffix("ON CONFLICT (app_id, version_code) DO UPDATE SET version_name = EXCLUDED.version_name").
				Suffix("RETURNING id::text")

			var versionID string
			if err := scanOne(ctx, tx, vq, "app version", &versionID); err != nil {
				return err
			}

			for _, l := range v.Links {
				if err := upsertLink(ctx, tx, versionID, l.AppSourceID, l.DownloadURL,
					store.LinkStatusOK, params.CheckedAt); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(otel.AttrAppID.String(created.ID))
	return created, nil
}

func (s *dbStore) ListVersions(ctx context.Context, appID string) ([]store.AppVersion, error) {
	ctx, span := s.startSpan(ctx, "dbStore.ListVersions", trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	if !validID(appID) {
		return nil, nil
	}
	q := psql.Select(versionColumns...).From("app_versions").
		Where(sq.Eq{"app_id": appID}).OrderBy("version_code DESC", "id")
	versions, err := getAll(ctx, s.pool, q, "app versions", scanVersion)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return versions, nil
}

func (s *dbStore) LatestVersion(ctx context.Context, appID string) (*store.AppVersion, error) {
	ctx, span := s.startSpan(ctx, "dbStore.LatestVersion", trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	if !validID(appID) {
		return nil, fmt.Errorf("versions of app %s: %w", appID, store.ErrNotFound)
	}
	q := psql.Select(versionColumns...).From("app_versions").
		Where(sq.Eq{"app_id": appID}).OrderBy("version_code DESC", "id").Limit(1)
	v, err := getOne(ctx, s.pool, q, "app version", scanVersion)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return v, nil
}

func (s *dbStore) ListSources(ctx context.Context) ([]store.Source, error) {
	ctx, span := s.startSpan(ctx, "dbStore.ListSources")
	defer span.End()

	q := psql.Select(sourceColumns...).From("app_sources").OrderBy("priority", "id")
	srcs, err := getAll(ctx, s.pool, q, "sources", scanSource)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(srcs)))
	return srcs, nil
}

func (s *dbStore) GetSource(ctx context.Context, id string) (*store.Source, error) {
	ctx, span := s.startSpan(ctx, "dbStore.GetSource", trace.WithAttributes(otel.AttrSourceID.String(id)))
	defer span.End()

	if !validID(id) {
		return nil, fmt.Errorf("source %s: %w", id, store.ErrNotFound)
	}
	q := psql.Select(sourceColumns...).From("app_sources").Where(sq.Eq{"id": id})
	src, err := getOne(ctx, s.pool, q, "source", scanSource)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return src, nil
}

func (s *dbStore) UpdateSource(ctx context.Context, id string, update store.SourceUpdate) (*store.Source, error) {
	ctx, span := s.startSpan(ctx, "dbStore.UpdateSource", trace.WithAttributes(otel.AttrSourceID.String(id)))
	defer span.End()

	if !validID(id) {
		return nil, fmt.Errorf("source %s: %w", id, store.ErrNotFound)
	}

	q := psql.Update("app_sources").Set("updated_at", sq.Expr("NOW()"))
	if update.Enabled != nil {
		q = q.Set("enabled", *update.Enabled)
	}
	if update.Priority != nil {
		q = q.Set("priority", *update.Priority)
	}
	if update.BaseURL != nil {
		q = q.Set("base_url", *update.BaseURL)
	}
	q = q.Where(sq.Eq{"id": id}).Suffix("RETURNING " + strings.Join(sourceColumns, ", "))

	src, err := getOne(ctx, s.pool, q, "source", scanSource)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return src, nil
}

func (s *dbStore) GetSourceStats(ctx context.Context, id string) (*store.SourceStats, error) {
	ctx, span := s.startSpan(ctx, "dbStore.GetSourceStats", trace.WithAttributes(otel.AttrSourceID.String(id)))
	defer span.End()

	if _, err := s.GetSource(ctx, id); err != nil {
		return nil, err
	}

	q := psql.Select("COUNT(*)", "MAX(last_checked_at)").From("app_source_versions").
		Where(sq.Eq{"app_source_id": id})
	stats := &store.SourceStats{}
	if err := scanOne(ctx, s.pool, q, "source stats", &stats.LinkCount, &stats.LastCheckedAt); err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return stats, nil
}

func (s *dbStore) GetSourceVersion(ctx context.Context, appVersionID, appSourceID string) (*store.SourceVersion, error) {
	ctx, span := s.startSpan(ctx, "dbStore.GetSourceVersion", trace.WithAttributes(otel.AttrSourceID.String(appSourceID)))
	defer span.End()

	if !validID(appVersionID) || !validID(appSourceID) {
		return nil, fmt.Errorf("link %s/%s: %w", appVersionID, appSourceID, store.ErrNotFound)
	}
	q := psql.Select(linkColumns...).From("app_source_versions l").
		Where(sq.Eq{"l.app_version_id": appVersionID, "l.app_source_id": appSourceID})
	link, err := getOne(ctx, s.pool, q, "source version", scanLink)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return link, nil
}

func (s *dbStore) BestSourceVersion(ctx context.Context, appVersionID string) (*store.SourceVersion, error) {
	ctx, span := s.startSpan(ctx, "dbStore.BestSourceVersion")
	defer span.End()

	if !validID(appVersionID) {
		return nil, fmt.Errorf("enabled link for version %s: %w", appVersionID, store.ErrNotFound)
	}
	q := psql.Select(linkColumns...).From("app_source_versions l").
		Join("app_sources s ON s.id = l.app_source_id").
		Where(sq.Eq{"l.app_version_id": appVersionID, "s.enabled": true}).
		OrderBy("s.priority", "l.app_source_id").
		Limit(1)
	link, err := getOne(ctx, s.pool, q, "source version", scanLink)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return link, nil
}

func (s *dbStore) ListSourceVersions(ctx context.Context, appID string) ([]store.SourceVersion, error) {
	ctx, span := s.startSpan(ctx, "dbStore.ListSourceVersions", trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	if !validID(appID) {
		return nil, nil
	}
	q := psql.Select(linkColumns...).From("app_source_versions l").
		Join("app_versions v ON v.id = l.app_version_id").
		Where(sq.Eq{"v.app_id": appID}).
		OrderBy("l.app_version_id", "l.app_source_id")
	links, err := getAll(ctx, s.pool, q, "source versions", scanLink)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return links, nil
}

func (s *dbStore) RecordLinkCheck(ctx context.Context, check store.LinkCheck) error {
	ctx, span := s.startSpan(ctx, "dbStore.RecordLinkCheck", trace.WithAttributes(otel.AttrSourceID.String(check.AppSourceID)))
	defer span.End()

	q := psql.Update("app_source_versions").
		Set("last_checked_at", check.CheckedAt).
		Set("last_status", check.Status).
		Where(sq.Eq{"app_version_id": check.AppVersionID, "app_source_id": check.AppSourceID})
	if err := exec(ctx, s.pool, q, "source version"); err != nil {
		otel.RecordError(span, err)
		return err
	}
	return nil
}

func (s *dbStore) CreateInstall(ctx context.Context, install *store.Install) error {
	ctx, span := s.startSpan(ctx, "dbStore.CreateInstall", trace.WithAttributes(otel.AttrAppID.String(install.AppID)))
	defer span.End()

	q := psql.Insert("installs").
		Columns("device_id", "app_id", "app_version_id", "status").
		Values(install.DeviceID, install.AppID, nullable(install.AppVersionID), install.Status).
		Suffix("RETURNING id::text, created_at, updated_at")
	if err := scanOne(ctx, s.pool, q, "install", &install.ID, &install.CreatedAt, &install.UpdatedAt); err != nil {
		otel.RecordError(span, err)
		return err
	}
	return nil
}

func (s *dbStore) GetInstall(ctx context.Context, deviceID, appID, appVersionID string) (*store.Install, error) {
	ctx, span := s.startSpan(ctx, "dbStore.GetInstall", trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	if !validID(deviceID) || !validID(appID) || !validID(appVersionID) {
		return nil, fmt.Errorf("install %s/%s/%s: %w", deviceID, appID, appVersionID, store.ErrNotFound)
	}
	q := psql.Select(installColumns...).From("installs").
		Where(sq.Eq{"device_id": deviceID, "app_id": appID, "app_version_id": appVersionID}).
		OrderBy("created_at DESC", "id").
		Limit(1)
	in, err := getOne(ctx, s.pool, q, "install", scanInstall)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return in, nil
}

func (s *dbStore) UpdateInstallStatus(ctx context.Context, deviceID, appID, appVersionID, status string) error {
	ctx, span := s.startSpan(ctx, "dbStore.UpdateInstallStatus", trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	q := psql.Update("installs").
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"device_id": deviceID, "app_id": appID, "app_version_id": appVersionID})
	if err := exec(ctx, s.pool, q, "install"); err != nil {
		otel.RecordError(span, err)
		return err
	}
	return nil
}

func (s *dbStore) AppendDownloadEvent(ctx context.Context, event *store.DownloadEvent) error {
	ctx, span := s.startSpan(ctx, "dbStore.AppendDownloadEvent", trace.WithAttributes(otel.AttrAppID.String(event.AppID)))
	defer span.End()

	q := psql.Insert("download_events").
		Columns("device_id", "app_id", "app_version_id", "app_source_id", "event_type", "error_message").
		Values(event.DeviceID, event.AppID, nullable(event.AppVersionID), nullable(event.AppSourceID),
			string(event.Type), nullable(event.ErrorMessage)).
		Suffix("RETURNING id::text, created_at")
	if err := scanOne(ctx, s.pool, q, "download event", &event.ID, &event.CreatedAt); err != nil {
		otel.RecordError(span, err)
		return err
	}
	return nil
}

func (s *dbStore) ListDownloadEvents(ctx context.Context, appID string, limit int) ([]store.DownloadEvent, error) {
	ctx, span := s.startSpan(ctx, "dbStore.ListDownloadEvents", trace.WithAttributes(otel.AttrAppID.String(appID)))
	defer span.End()

	if !validID(appID) {
		return nil, nil
	}
	q := psql.Select(eventColumns...).From("download_events").
		Where(sq.Eq{"app_id": appID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	events, err := getAll(ctx, s.pool, q, "download events", scanEvent)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return events, nil
}

func upsertLink(ctx context.Context, db querier, appVersionID, appSourceID, downloadURL, status string, checkedAt time.Time) error {
	q := psql.Insert("app_source_versions").
		Columns("app_version_id", "app_source_id", "download_url", "last_checked_at", "last_status").
		Values(appVersionID, appSourceID, downloadURL, checkedAt, status).
		Suffix("ON CONFLICT (app_version_id, app_source_id) DO UPDATE SET " +
			"download_url = EXCLUDED.download_url, last_checked_at = EXCLUDED.last_checked_at, " +
			"last_status = EXCLUDED.last_status")
	return exec(ctx, db, q, "source version")
}

func getOne[T any](ctx context.Context, db querier, q sq.Sqlizer, what string, scan func(scanner) (T, error)) (*T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}
	v, err := scan(db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, wrapErr(err, what)
	}
	return &v, nil
}

func scanOne(ctx context.Context, db querier, q sq.Sqlizer, what string, dest ...any) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", what, err)
	}
	if err := db.QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		return wrapErr(err, what)
	}
	return nil
}

func getAll[T any](ctx context.Context, db querier, q sq.Sqlizer, what string, scan func(scanner) (T, error)) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err, what)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
	if err != nil {
		return nil, wrapErr(err, what)
	}
	return out, nil
}

func exec(ctx context.Context, db querier, q sq.Sqlizer, what string) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", what, err)
	}
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return wrapErr(err, what)
	}
	return nil
}

// wrapErr maps pgx errors onto store sentinels
func wrapErr(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", what, store.ErrAlreadyExists)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s references a missing row: %w", what, store.ErrNotFound)
		}
	}
	return fmt.Errorf("failed to query %s: %w", what, err)
}

func appDest(a *store.App) []any {
	return []any{
		&a.ID, &a.PackageName, &a.PlayURL, &a.DisplayName, &a.ShortDescription, &a.FullDescription,
		&a.IconURL, &a.CurrentVersionName, &a.CurrentVersionCode, &a.CreatedAt, &a.UpdatedAt,
	}
}

func scanApp(row scanner) (store.App, error) {
	var a store.App
	err := row.Scan(appDest(&a)...)
	return a, err
}

func scanVersion(row scanner) (store.AppVersion, error) {
	var v store.AppVersion
	err := row.Scan(&v.ID, &v.AppID, &v.VersionName, &v.VersionCode, &v.ChecksumSHA256, &v.CreatedAt)
	return v, err
}

func scanSource(row scanner) (store.Source, error) {
	var s store.Source
	err := row.Scan(&s.ID, &s.Name, &s.Kind, &s.BaseURL, &s.Enabled, &s.Priority, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanLink(row scanner) (store.SourceVersion, error) {
	var l store.SourceVersion
	err := row.Scan(&l.ID, &l.AppVersionID, &l.AppSourceID, &l.DownloadURL, &l.LastCheckedAt, &l.LastStatus, &l.CreatedAt)
	return l, err
}

func scanDevice(row scanner) (store.Device, error) {
	var d store.Device
	err := row.Scan(&d.ID, &d.FriendlyName, &d.FirstSeenAt, &d.LastSeenAt, &d.LastIP)
	return d, err
}

func scanInstall(row scanner) (store.Install, error) {
	var in store.Install
	err := row.Scan(&in.ID, &in.DeviceID, &in.AppID, &in.AppVersionID, &in.Status, &in.CreatedAt, &in.UpdatedAt)
	return in, err
}

func scanEvent(row scanner) (store.DownloadEvent, error) {
	var e store.DownloadEvent
	err := row.Scan(&e.ID, &e.DeviceID, &e.AppID, &e.AppVersionID, &e.AppSourceID, &e.Type, &e.ErrorMessage, &e.CreatedAt)
	return e, err
}

// nullable maps the empty string to SQL NULL
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableCode(name string, code int64) any {
	if name == "" && code == 0 {
		return nil
	}
	return code
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}
