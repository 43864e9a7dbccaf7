package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/member-registry/internal/domain"
)

// MemberRepository defines persistence access for directory members.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	Update(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	ListOrderedByName(ctx context.Context) ([]*domain.Member, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	const query = `
        INSERT INTO members (name, email, phone_number, is_active, is_deleted)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		member.Name,
		member.Email,
		member.PhoneNumber,
		member.Active,
		member.Deleted,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	const query = `
        UPDATE members SET name=$1, email=$2, phone_number=$3, is_active=$4, is_deleted=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		member.Name,
		member.Email,
		member.PhoneNumber,
		member.Active,
		member.Deleted,
		member.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	const query = `
        SELECT id, name, email, phone_number, is_active, is_deleted, created_at, updated_at
        FROM members WHERE id=$1`

	return r.scanMember(r.pool.QueryRow(ctx, query, id))
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	const query = `
        SELECT id, name, email, phone_number, is_active, is_deleted, created_at, updated_at
        FROM members WHERE email=$1`

	return r.scanMember(r.pool.QueryRow(ctx, query, email))
}

func (r *memberRepository) ListOrderedByName(ctx context.Context) ([]*domain.Member, error) {
	const query = `
        SELECT id, name, email, phone_number, is_active, is_deleted, created_at, updated_at
        FROM members WHERE is_deleted = FALSE ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.Member, 0)
	for rows.Next() {
		member, err := r.scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *memberRepository) scanMember(row pgx.Row) (*domain.Member, error) {
	var member domain.Member
	if err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.PhoneNumber,
		&member.Active,
		&member.Deleted,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}
