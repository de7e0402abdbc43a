// Package postgres provides a PostgreSQL-backed activity store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/lib/pq"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	"secretsanta/internal/activity/store/postgres/migrations"
	id "secretsanta/pkg/domain"
	"secretsanta/pkg/platform/migrate"
	"secretsanta/pkg/platform/sentinel"
	"secretsanta/pkg/platform/tx"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store persists activities in PostgreSQL. LockActivity takes a row lock
// with SELECT ... FOR UPDATE that lasts until the transaction ends.
type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

var _ ports.Store = (*Store)(nil)

// New wraps an open handle. Callers are responsible for migrations.
func New(db *sql.DB, txTimeout time.Duration) *Store {
	return &Store{db: db, txTimeout: txTimeout}
}

// Open connects with the pgx driver and applies embedded migrations.
func Open(ctx context.Context, databaseURL string, txTimeout time.Duration) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if err := migrate.Apply(ctx, db, migrate.Postgres, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return New(db, txTimeout), nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const activityColumns = `id, admin_key_digest, name, description, status, deadline, created_at, updated_at, matched_at, revealed_at`

const participantColumns = `id, activity_id, nickname, social_account, real_name_enc, phone_enc, address_enc, note_to_santa, note_to_target, target_id, created_at`

func scanActivity(row rowScanner) (*models.Activity, error) {
	var (
		rawID, status         string
		matchedAt, revealedAt sql.NullTime
		a                     models.Activity
	)
	err := row.Scan(&rawID, &a.AdminKeyDigest, &a.Name, &a.Description, &status,
		&a.Deadline, &a.CreatedAt, &a.UpdatedAt, &matchedAt, &revealedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse activity id: %w", err)
	}
	a.ID = id.ActivityID(parsed)
	if a.Status, err = models.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("parse activity status: %w", err)
	}
	a.Deadline = a.Deadline.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	if matchedAt.Valid {
		t := matchedAt.Time.UTC()
		a.MatchedAt = &t
	}
	if revealedAt.Valid {
		t := revealedAt.Time.UTC()
		a.RevealedAt = &t
	}
	return &a, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var (
		rawID, rawActivityID string
		targetID             sql.NullString
		p                    models.Participant
	)
	err := row.Scan(&rawID, &rawActivityID, &p.Nickname, &p.SocialAccount,
		&p.Shipping.RealName, &p.Shipping.Phone, &p.Shipping.Address,
		&p.NoteToSanta, &p.NoteToTarget, &targetID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("participant not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	pid, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse participant id: %w", err)
	}
	aid, err := uuid.Parse(rawActivityID)
	if err != nil {
		return nil, fmt.Errorf("parse activity id: %w", err)
	}
	p.ID = id.ParticipantID(pid)
	p.ActivityID = id.ActivityID(aid)
	if targetID.Valid {
		tid, err := uuid.Parse(targetID.String)
		if err != nil {
			return nil, fmt.Errorf("parse target id: %w", err)
		}
		target := id.ParticipantID(tid)
		p.TargetID = &target
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func findActivity(ctx context.Context, q queryer, query string, arg any) (*models.Activity, error) {
	return scanActivity(q.QueryRowContext(ctx, query, arg))
}

func (s *Store) FindActivity(ctx context.Context, activityID id.ActivityID) (*models.Activity, error) {
	return findActivity(ctx, s.db, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, activityID.String())
}

func (s *Store) FindActivityByAdminDigest(ctx context.Context, digest string) (*models.Activity, error) {
	return findActivity(ctx, s.db, `SELECT `+activityColumns+` FROM activities WHERE admin_key_digest = $1`, digest)
}

func (s *Store) FindParticipant(ctx context.Context, participantID id.ParticipantID) (*models.Participant, error) {
	return scanParticipant(s.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`, participantID.String()))
}

func (s *Store) FindSender(ctx context.Context, targetID id.ParticipantID) (*models.Participant, error) {
	p, err := scanParticipant(s.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE target_id = $1`, targetID.String()))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("sender not found: %w", sentinel.ErrNotFound)
	}
	return p, err
}

func (s *Store) ListParticipants(ctx context.Context, activityID id.ActivityID) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE activity_id = $1 ORDER BY created_at, seq`,
		activityID.String())
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

func (s *Store) CountParticipants(ctx context.Context, activityID id.ActivityID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE activity_id = $1`, activityID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// RunInTx runs fn in one READ COMMITTED transaction. Writers that must see a
// stable activity call LockActivity first.
func (s *Store) RunInTx(ctx context.Context, fn func(store ports.TxStore) error) error {
	return tx.Run(ctx, s.db, s.txTimeout, nil, func(sqlTx *sql.Tx) error {
		return fn(&txStore{tx: sqlTx})
	})
}

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) LockActivity(ctx context.Context, activityID id.ActivityID) (*models.Activity, error) {
	return findActivity(ctx, t.tx, `SELECT `+activityColumns+` FROM activities WHERE id = $1 FOR UPDATE`, activityID.String())
}

func (t *txStore) ListParticipantIDs(ctx context.Context, activityID id.ActivityID) ([]id.ParticipantID, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id FROM participants WHERE activity_id = $1 ORDER BY created_at, seq`, activityID.String())
	if err != nil {
		return nil, fmt.Errorf("list participant ids: %w", err)
	}
	defer rows.Close()

	var ids []id.ParticipantID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse participant id: %w", err)
		}
		ids = append(ids, id.ParticipantID(parsed))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant ids: %w", err)
	}
	return ids, nil
}

func (t *txStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO activities (`+activityColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID.String(), a.AdminKeyDigest, a.Name, a.Description, a.Status.String(),
		a.Deadline.UTC(), a.CreatedAt.UTC(), a.UpdatedAt.UTC(), nullTime(a.MatchedAt), nullTime(a.RevealedAt))
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return fmt.Errorf("activity %s: %w", a.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (t *txStore) UpdateActivity(ctx context.Context, a *models.Activity) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE activities SET name = $1, description = $2, deadline = $3, updated_at = $4 WHERE id = $5`,
		a.Name, a.Description, a.Deadline.UTC(), a.UpdatedAt.UTC(), a.ID.String())
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return requireRows(res, 1, "activity not found")
}

func (t *txStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	var target sql.NullString
	if p.TargetID != nil {
		target = sql.NullString{String: p.TargetID.String(), Valid: true}
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO participants (`+participantColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID.String(), p.ActivityID.String(), p.Nickname, p.SocialAccount,
		p.Shipping.RealName, p.Shipping.Phone, p.Shipping.Address,
		p.NoteToSanta, p.NoteToTarget, target, p.CreatedAt.UTC())
	if err != nil {
		switch pgCode(err) {
		case uniqueViolation:
			return fmt.Errorf("nickname %q taken: %w", p.Nickname, sentinel.ErrConflict)
		case foreignKeyViolation:
			return fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (t *txStore) DeleteParticipant(ctx context.Context, activityID id.ActivityID, participantID id.ParticipantID) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM participants WHERE id = $1 AND activity_id = $2`, participantID.String(), activityID.String())
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return requireRows(res, 1, "participant not found")
}

// SetTargets writes every assignment with one UPDATE joined against unnest.
func (t *txStore) SetTargets(ctx context.Context, activityID id.ActivityID, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	givers := make([]string, len(assignments))
	targets := make([]string, len(assignments))
	for i, a := range assignments {
		givers[i] = a.Giver.String()
		targets[i] = a.Target.String()
	}
	query := `
		UPDATE participants AS p
		SET target_id = a.target
		FROM unnest($1::uuid[], $2::uuid[]) AS a(giver, target)
		WHERE p.id = a.giver AND p.activity_id = $3
	`
	res, err := t.tx.ExecContext(ctx, query, pq.Array(givers), pq.Array(targets), activityID.String())
	if err != nil {
		return fmt.Errorf("set targets batch: %w", err)
	}
	return requireRows(res, int64(len(assignments)), "giver not found")
}

func (t *txStore) TransitionStatus(ctx context.Context, activityID id.ActivityID, from, to models.Status, at time.Time) error {
	var column string
	switch to {
	case models.StatusMatched:
		column = "matched_at"
	case models.StatusRevealed:
		column = "revealed_at"
	default:
		return fmt.Errorf("cannot transition to %s: %w", to, sentinel.ErrInvalidState)
	}
	res, err := t.tx.ExecContext(ctx,
		`UPDATE activities SET status = $1, `+column+` = $2, updated_at = $2 WHERE id = $3 AND status = $4`,
		to.String(), at.UTC(), activityID.String(), from.String())
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	if n == 0 {
		if _, err := findActivity(ctx, t.tx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, activityID.String()); err != nil {
			return err
		}
		return fmt.Errorf("activity is not %s: %w", from, sentinel.ErrInvalidState)
	}
	return nil
}

func requireRows(res sql.Result, want int64, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != want {
		return fmt.Errorf("%s: %w", notFound, sentinel.ErrNotFound)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
