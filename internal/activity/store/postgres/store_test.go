package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
	id "secretsanta/pkg/domain"
	"secretsanta/pkg/platform/sentinel"
)

var now = time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, time.Second), mock
}

func activityRow(activityID id.ActivityID, status models.Status) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "admin_key_digest", "name", "description", "status",
		"deadline", "created_at", "updated_at", "matched_at", "revealed_at",
	}).AddRow(activityID.String(), "digest", "Office", "", status.String(),
		now.Add(24*time.Hour), now, now, nil, nil)
}

func TestOpenRequiresURL(t *testing.T) {
	_, err := Open(context.Background(), " ", 0)
	assert.Error(t, err)
}

func TestFindActivity(t *testing.T) {
	activityID := id.NewActivityID()

	t.Run("scans a row", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT .+ FROM activities WHERE id = \$1`).
			WithArgs(activityID.String()).
			WillReturnRows(activityRow(activityID, models.StatusOpen))

		found, err := store.FindActivity(context.Background(), activityID)
		require.NoError(t, err)
		assert.Equal(t, activityID, found.ID)
		assert.Equal(t, models.StatusOpen, found.Status)
		assert.Nil(t, found.MatchedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT .+ FROM activities WHERE id = \$1`).
			WithArgs(activityID.String()).
			WillReturnError(sql.ErrNoRows)

		_, err := store.FindActivity(context.Background(), activityID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestMatchingTransactionCommits(t *testing.T) {
	store, mock := newMockStore(t)
	activityID := id.NewActivityID()
	a, b := id.NewParticipantID(), id.NewParticipantID()
	assignments := []models.Assignment{{Giver: a, Target: b}, {Giver: b, Target: a}}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM activities WHERE id = \$1 FOR UPDATE`).
		WithArgs(activityID.String()).
		WillReturnRows(activityRow(activityID, models.StatusOpen))
	mock.ExpectExec(`UPDATE participants AS p\s+SET target_id = a.target\s+FROM unnest`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), activityID.String()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE activities SET status = \$1, matched_at = \$2`).
		WithArgs("MATCHED", now, activityID.String(), "OPEN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTx(context.Background(), func(tx ports.TxStore) error {
		if _, err := tx.LockActivity(context.Background(), activityID); err != nil {
			return err
		}
		if err := tx.SetTargets(context.Background(), activityID, assignments); err != nil {
			return err
		}
		return tx.TransitionStatus(context.Background(), activityID, models.StatusOpen, models.StatusMatched, now)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetTargetsRollsBack(t *testing.T) {
	activityID := id.NewActivityID()
	assignments := []models.Assignment{
		{Giver: id.NewParticipantID(), Target: id.NewParticipantID()},
		{Giver: id.NewParticipantID(), Target: id.NewParticipantID()},
	}

	tests := []struct {
		name    string
		result  driver.Result
		execErr error
		wantErr error
	}{
		{name: "driver error", execErr: errors.New("disk full")},
		{name: "missing giver", result: sqlmock.NewResult(0, 1), wantErr: sentinel.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectBegin()
			exec := mock.ExpectExec(`UPDATE participants AS p`)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(tt.result)
			}
			mock.ExpectRollback()

			err := store.RunInTx(context.Background(), func(tx ports.TxStore) error {
				return tx.SetTargets(context.Background(), activityID, assignments)
			})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransitionStatusRejectsStaleState(t *testing.T) {
	store, mock := newMockStore(t)
	activityID := id.NewActivityID()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE activities SET status = \$1, revealed_at = \$2`).
		WithArgs("REVEALED", now, activityID.String(), "MATCHED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM activities WHERE id = \$1`).
		WithArgs(activityID.String()).
		WillReturnRows(activityRow(activityID, models.StatusOpen))
	mock.ExpectRollback()

	err := store.RunInTx(context.Background(), func(tx ports.TxStore) error {
		return tx.TransitionStatus(context.Background(), activityID, models.StatusMatched, models.StatusRevealed, now)
	})
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateParticipantMapsConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{name: "nickname taken", code: uniqueViolation, want: sentinel.ErrConflict},
		{name: "activity missing", code: foreignKeyViolation, want: sentinel.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			p, err := models.NewParticipant(id.NewParticipantID(), id.NewActivityID(), "rudolph", "", "socks", "",
				models.EncryptedShipping{RealName: "x", Phone: "y", Address: "z"}, now)
			require.NoError(t, err)

			mock.ExpectBegin()
			mock.ExpectExec(`INSERT INTO participants`).WillReturnError(&pgconn.PgError{Code: tt.code})
			mock.ExpectRollback()

			err = store.RunInTx(context.Background(), func(tx ports.TxStore) error {
				return tx.CreateParticipant(context.Background(), p)
			})
			assert.ErrorIs(t, err, tt.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
