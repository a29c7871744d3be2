package postgresql

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

const TableOutcomes = "upload_row_outcomes"

var outcomeColumns = []string{
	"row_index",
	"kind",
	"operation",
	"id_number",
	"raw_id_number",
	"first_name",
	"surname",
	"detail",
	"error_detail",
	"member_id",
	"verification",
	"record",
}

type OutcomesRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewOutcomesRepository(pool *pgxpool.Pool) *OutcomesRepository {
	return &OutcomesRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *OutcomesRepository) SaveOutcomes(ctx context.Context, jobID string, outcomes ...*domain.RowOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	db := extractDB(ctx, r.pool)

	copied, err := db.CopyFrom(ctx, pgx.Identifier{TableOutcomes}, append([]string{"job_id"}, outcomeColumns...),
		pgx.CopyFromSlice(len(outcomes), func(i int) ([]any, error) {
			o := outcomes[i]
			return []any{
				jobID,
				o.RowIndex,
				string(o.Kind),
				string(o.Operation),
				o.IDNumber,
				o.RawIDNumber,
				o.FirstName,
				o.Surname,
				o.Detail,
				o.ErrorDetail,
				o.MemberID,
				string(o.Verification),
				o.Record,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("failed to save outcomes: %w", err)
	}

	if copied != int64(len(outcomes)) {
		return fmt.Errorf("failed to save outcomes: copied %d rows, expected %d", copied, len(outcomes))
	}

	return nil
}

// DeleteOutcomes removes the outcomes of an earlier attempt of the job.
func (r *OutcomesRepository) DeleteOutcomes(ctx context.Context, jobID string) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Delete(TableOutcomes).
		Where(sq.Eq{"job_id": jobID}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *OutcomesRepository) Outcomes(ctx context.Context, jobID string) ([]*domain.RowOutcome, error) {
	return r.selectOutcomes(ctx, r.qb.
		Select(outcomeColumns...).
		From(TableOutcomes).
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("row_index ASC"))
}

func (r *OutcomesRepository) OutcomesByJob(
	ctx context.Context,
	jobID string,
	limit, offset uint64,
) ([]*domain.RowOutcome, int, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("COUNT(*)").
		From(TableOutcomes).
		Where(sq.Eq{"job_id": jobID}).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	var total int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, -1, scanRowError(err)
	}

	outcomes, err := r.selectOutcomes(ctx, r.qb.
		Select(outcomeColumns...).
		From(TableOutcomes).
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("row_index ASC").
		Limit(limit).
		Offset(offset))
	if err != nil {
		return nil, -1, err
	}

	return outcomes, total, nil
}

func (r *OutcomesRepository) selectOutcomes(ctx context.Context, query sq.SelectBuilder) ([]*domain.RowOutcome, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	outcomes, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.RowOutcome])
	if err != nil {
		return nil, collectRowsError(err)
	}

	return outcomes, nil
}

func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}
