package postgresql

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

var lookupTables = map[domain.LookupKind]string{
	domain.LookupGender:           "genders",
	domain.LookupRace:             "races",
	domain.LookupCitizenship:      "citizenships",
	domain.LookupLanguage:         "languages",
	domain.LookupOccupation:       "occupations",
	domain.LookupQualification:    "qualifications",
	domain.LookupProvince:         "provinces",
	domain.LookupMunicipality:     "municipalities",
	domain.LookupWard:             "wards",
	domain.LookupVotingDistrict:   "voting_districts",
	domain.LookupSubscriptionType: "subscription_types",
}

type LookupsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewLookupsRepository(pool *pgxpool.Pool) *LookupsRepository {
	return &LookupsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Resolve matches value against the code or the name of a reference row, ignoring case.
func (r *LookupsRepository) Resolve(ctx context.Context, kind domain.LookupKind, value string) (int64, bool, error) {
	table, ok := lookupTables[kind]
	if !ok {
		return 0, false, fmt.Errorf("unknown lookup kind %q", kind)
	}

	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("id").
		From(table).
		Where(sq.Or{
			sq.Expr("lower(code) = lower(?)", value),
			sq.Expr("lower(name) = lower(?)", value),
		}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, false, createQueryError(err)
	}

	var id int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, scanRowError(err)
	}

	return id, true, nil
}
