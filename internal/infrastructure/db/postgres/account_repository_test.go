package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/account-service/internal/core/domain"
)

var columns = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "role", "created_at", "updated_at"}

func sampleAccount() *domain.Account {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Account{
		ID:           "6f1c2a5e-8d8b-4a53-9a49-1f2f3c4d5e6f",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		FirstName:    "Alice",
		LastName:     "Liddell",
		Role:         domain.RoleUser,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows(columns).AddRow(a.ID, a.Username, a.Email, a.PasswordHash,
		a.FirstName, a.LastName, a.Role, a.CreatedAt, a.UpdatedAt)
}

func TestAccountRepository_FindByUsername(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantAny   bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM accounts WHERE username = \$1`).
					WithArgs("alice").
					WillReturnRows(accountRow(sampleAccount()))
			},
		},
		{
			name: "not found maps to domain error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM accounts WHERE username = \$1`).
					WithArgs("alice").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "database error is wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM accounts WHERE username = \$1`).
					WithArgs("alice").
					WillReturnError(errors.New("connection refused"))
			},
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			got, err := NewAccountRepository(mock).FindByUsername(context.Background(), "alice")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantAny:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
				assert.NotErrorIs(t, err, domain.ErrAccountNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, sampleAccount(), got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestAccountRepository_FindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := sampleAccount()
	mock.ExpectQuery(`SELECT .* FROM accounts WHERE id = \$1`).
		WithArgs(a.ID).
		WillReturnRows(accountRow(a))

	got, err := NewAccountRepository(mock).FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Save(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, a *domain.Account)
		wantErr   error
	}{
		{
			name: "upserts",
			setupMock: func(mock pgxmock.PgxPoolIface, a *domain.Account) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(a.ID, a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Role, a.CreatedAt, a.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to duplicate",
			setupMock: func(mock pgxmock.PgxPoolIface, _ *domain.Account) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: domain.ErrDuplicateAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			a := sampleAccount()
			tt.setupMock(mock, a)

			saved, err := NewAccountRepository(mock).Save(context.Background(), a)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, saved)
			} else {
				require.NoError(t, err)
				assert.Equal(t, a, saved)
				assert.NotSame(t, a, saved)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountRepository_DeleteByUsername(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deletes", affected: 1},
		{name: "missing row", affected: 0, wantErr: domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`DELETE FROM accounts WHERE username = \$1`).
				WithArgs("alice").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			err = NewAccountRepository(mock).DeleteByUsername(context.Background(), "alice")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a := sampleAccount()
	b := sampleAccount()
	b.ID, b.Username, b.Email = "b-id", "bob", "bob@example.com"

	rows := pgxmock.NewRows(columns).
		AddRow(a.ID, a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Role, a.CreatedAt, a.UpdatedAt).
		AddRow(b.ID, b.Username, b.Email, b.PasswordHash, b.FirstName, b.LastName, b.Role, b.CreatedAt, b.UpdatedAt)
	mock.ExpectQuery(`SELECT .* FROM accounts ORDER BY username`).WillReturnRows(rows)

	got, err := NewAccountRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "bob", got[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgres://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("postgresql://u:p@h/db"))
	assert.Equal(t, "pgx5://u:p@h/db", migrateURL("pgx5://u:p@h/db"))
}
