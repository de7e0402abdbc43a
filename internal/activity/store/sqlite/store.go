// Package sqlite provides a SQLite-backed activity store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	"secretsanta/internal/activity/store/sqlite/migrations"
	id "secretsanta/pkg/domain"
	"secretsanta/pkg/platform/migrate"
	"secretsanta/pkg/platform/sentinel"
	"secretsanta/pkg/platform/tx"
)

// Store persists activities in SQLite. Transactions begin IMMEDIATE, so a
// transaction holds the database write lock from its first statement and
// concurrent RunInTx calls serialize.
type Store struct {
	sqlDB     *sql.DB
	txTimeout time.Duration
}

var _ ports.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

// Open opens a SQLite activity store and applies embedded migrations.
// txTimeout of zero uses tx.DefaultTimeout.
func Open(ctx context.Context, path string, txTimeout time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate.Apply(ctx, sqlDB, migrate.SQLite, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, txTimeout: txTimeout}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const activityColumns = `id, admin_key_digest, name, description, status, deadline, created_at, updated_at, matched_at, revealed_at`

const participantColumns = `id, activity_id, nickname, social_account, real_name_enc, phone_enc, address_enc,
	note_to_santa, note_to_target, target_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var (
		rawID, status                  string
		deadline, createdAt, updatedAt int64
		matchedAt, revealedAt          sql.NullInt64
		a                              models.Activity
	)
	if err := row.Scan(&rawID, &a.AdminKeyDigest, &a.Name, &a.Description, &status,
		&deadline, &createdAt, &updatedAt, &matchedAt, &revealedAt); err != nil {
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
	a.Deadline = fromMillis(deadline)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	a.MatchedAt = fromNullMillis(matchedAt)
	a.RevealedAt = fromNullMillis(revealedAt)
	return &a, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var (
		rawID, rawActivityID string
		targetID             sql.NullString
		createdAt            int64
		p                    models.Participant
	)
	if err := row.Scan(&rawID, &rawActivityID, &p.Nickname, &p.SocialAccount,
		&p.Shipping.RealName, &p.Shipping.Phone, &p.Shipping.Address,
		&p.NoteToSanta, &p.NoteToTarget, &targetID, &createdAt); err != nil {
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
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

func findActivity(ctx context.Context, q queryer, activityID id.ActivityID) (*models.Activity, error) {
	row := q.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, activityID.String())
	return scanActivity(row)
}

func (s *Store) FindActivity(ctx context.Context, activityID id.ActivityID) (*models.Activity, error) {
	return findActivity(ctx, s.sqlDB, activityID)
}

func (s *Store) FindActivityByAdminDigest(ctx context.Context, digest string) (*models.Activity, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE admin_key_digest = ?`, digest)
	return scanActivity(row)
}

func (s *Store) FindParticipant(ctx context.Context, participantID id.ParticipantID) (*models.Participant, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = ?`, participantID.String())
	return scanParticipant(row)
}

func (s *Store) FindSender(ctx context.Context, targetID id.ParticipantID) (*models.Participant, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE target_id = ?`, targetID.String())
	p, err := scanParticipant(row)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("sender not found: %w", sentinel.ErrNotFound)
	}
	return p, err
}

func (s *Store) ListParticipants(ctx context.Context, activityID id.ActivityID) ([]*models.Participant, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE activity_id = ? ORDER BY created_at, rowid`,
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
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE activity_id = ?`, activityID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// RunInTx runs fn in one IMMEDIATE transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(store ports.TxStore) error) error {
	return tx.Run(ctx, s.sqlDB, s.txTimeout, nil, func(sqlTx *sql.Tx) error {
		return fn(&txStore{tx: sqlTx})
	})
}

type txStore struct {
	tx *sql.Tx
}

// LockActivity reads the activity. The IMMEDIATE transaction already holds
// the write lock, so no other writer can change it before commit.
func (t *txStore) LockActivity(ctx context.Context, activityID id.ActivityID) (*models.Activity, error) {
	return findActivity(ctx, t.tx, activityID)
}

func (t *txStore) ListParticipantIDs(ctx context.Context, activityID id.ActivityID) ([]id.ParticipantID, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id FROM participants WHERE activity_id = ? ORDER BY created_at, rowid`, activityID.String())
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
		`INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(),
		a.AdminKeyDigest,
		a.Name,
		a.Description,
		a.Status.String(),
		toMillis(a.Deadline),
		toMillis(a.CreatedAt),
		toMillis(a.UpdatedAt),
		toNullMillis(a.MatchedAt),
		toNullMillis(a.RevealedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("activity %s: %w", a.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (t *txStore) UpdateActivity(ctx context.Context, a *models.Activity) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE activities SET name = ?, description = ?, deadline = ?, updated_at = ? WHERE id = ?`,
		a.Name, a.Description, toMillis(a.Deadline), toMillis(a.UpdatedAt), a.ID.String())
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return requireRow(res, "activity not found")
}

func (t *txStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO participants (`+participantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(),
		p.ActivityID.String(),
		p.Nickname,
		p.SocialAccount,
		p.Shipping.RealName,
		p.Shipping.Phone,
		p.Shipping.Address,
		p.NoteToSanta,
		p.NoteToTarget,
		nullTarget(p.TargetID),
		toMillis(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("nickname %q taken: %w", p.Nickname, sentinel.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("activity not found: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (t *txStore) DeleteParticipant(ctx context.Context, activityID id.ActivityID, participantID id.ParticipantID) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM participants WHERE id = ? AND activity_id = ?`, participantID.String(), activityID.String())
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return requireRow(res, "participant not found")
}

func (t *txStore) SetTargets(ctx context.Context, activityID id.ActivityID, assignments []models.Assignment) error {
	stmt, err := t.tx.PrepareContext(ctx, `UPDATE participants SET target_id = ? WHERE id = ? AND activity_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare set targets: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		res, err := stmt.ExecContext(ctx, a.Target.String(), a.Giver.String(), activityID.String())
		if err != nil {
			return fmt.Errorf("set target for %s: %w", a.Giver, err)
		}
		if err := requireRow(res, "giver not found"); err != nil {
			return err
		}
	}
	return nil
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
		`UPDATE activities SET status = ?, `+column+` = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to.String(), toMillis(at), toMillis(at), activityID.String(), from.String())
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition status: %w", err)
	}
	if n == 0 {
		if _, err := findActivity(ctx, t.tx, activityID); err != nil {
			return err
		}
		return fmt.Errorf("activity is not %s: %w", from, sentinel.ErrInvalidState)
	}
	return nil
}

func requireRow(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", notFound, sentinel.ErrNotFound)
	}
	return nil
}

func nullTarget(target *id.ParticipantID) sql.NullString {
	if target == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: target.String(), Valid: true}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
