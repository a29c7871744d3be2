package postgresql

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

const TableMembers = "members"

var memberColumns = []string{
	"id_number",
	"first_name",
	"surname",
	"date_of_birth",
	"cell_number",
	"email",
	"address",
	"gender_id",
	"race_id",
	"citizenship_id",
	"language_id",
	"occupation_id",
	"qualification_id",
	"province_id",
	"municipality_id",
	"ward_id",
	"voting_district_id",
	"subscription_type_id",
	"membership_amount_cents",
	"payment_method",
	"payment_reference",
	"payment_date",
	"date_joined",
}

type MembersRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewMembersRepository(pool *pgxpool.Pool) *MembersRepository {
	return &MembersRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// MemberByIDNumber locks the member row for the rest of the surrounding transaction.
func (r *MembersRepository) MemberByIDNumber(ctx context.Context, idNumber string) (*domain.Member, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(append([]string{"id"}, memberColumns...)...).
		From(TableMembers).
		Where(sq.Eq{"id_number": idNumber}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	member, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.Member])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMemberNotFound
	}
	if err != nil {
		return nil, collectRowsError(err)
	}

	return member, nil
}

// InsertMember returns domain.ErrConcurrentInsert when another transaction inserted the
// same id number first.
func (r *MembersRepository) InsertMember(ctx context.Context, m *domain.Member) (int64, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableMembers).
		Columns(memberColumns...).
		Values(
			m.IDNumber,
			m.FirstName,
			m.Surname,
			m.DateOfBirth,
			m.CellNumber,
			m.Email,
			m.Address,
			m.GenderID,
			m.RaceID,
			m.CitizenshipID,
			m.LanguageID,
			m.OccupationID,
			m.QualificationID,
			m.ProvinceID,
			m.MunicipalityID,
			m.WardID,
			m.VotingDistrictID,
			m.SubscriptionTypeID,
			m.MembershipAmountCents,
			m.PaymentMethod,
			m.PaymentReference,
			m.PaymentDate,
			m.DateJoined,
		).
		Suffix("ON CONFLICT (id_number) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return 0, createQueryError(err)
	}

	var id int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrConcurrentInsert
		}
		return 0, scanRowError(err)
	}

	return id, nil
}

func (r *MembersRepository) UpdateMember(ctx context.Context, id int64, changes []domain.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}

	db := extractDB(ctx, r.pool)

	set := make(map[string]any, len(changes)+1)
	for _, c := range changes {
		set[c.Column] = c.New
	}
	set["updated_at"] = sq.Expr("now()")

	sql, args, err := r.qb.
		Update(TableMembers).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	return nil
}
