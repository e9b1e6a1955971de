package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careaxis/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const memberCols = `id, user_id, first_name, last_name, job, specialty, license_number,
	phone, email, active, created_at, updated_at`

func (r *repoPG) scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.UserID, &m.FirstName, &m.LastName, &m.Job, &m.Specialty,
		&m.LicenseNumber, &m.Phone, &m.Email, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Member) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_member (id, user_id, first_name, last_name, job, specialty, license_number, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		m.ID, m.UserID, m.FirstName, m.LastName, m.Job, m.Specialty, m.LicenseNumber, m.Phone, m.Email, m.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	return r.scanMember(r.conn(ctx).QueryRow(ctx, `SELECT `+memberCols+` FROM staff_member WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Member) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff_member SET first_name=$2, last_name=$3, job=$4, specialty=$5,
			license_number=$6, phone=$7, email=$8, active=$9, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.FirstName, m.LastName, m.Job, m.Specialty, m.LicenseNumber, m.Phone, m.Email, m.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_member WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, job string, limit, offset int) ([]*Member, int, error) {
	where := ""
	args := []interface{}{}
	if job != "" {
		where = ` WHERE job = $1`
		args = append(args, job)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff_member`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + memberCols + ` FROM staff_member` + where +
		fmt.Sprintf(` ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddShift(ctx context.Context, s *Shift) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO shift (id, staff_id, start_time, end_time, ward)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.StaffID, s.StartTime, s.EndTime, s.Ward)
	return err
}

func (r *repoPG) RemoveShift(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM shift WHERE id = $1`, id)
	return err
}

func (r *repoPG) scanShifts(rows pgx.Rows) ([]*Shift, error) {
	defer rows.Close()
	var shifts []*Shift
	for rows.Next() {
		var s Shift
		if err := rows.Scan(&s.ID, &s.StaffID, &s.StartTime, &s.EndTime, &s.Ward, &s.CreatedAt); err != nil {
			return nil, err
		}
		shifts = append(shifts, &s)
	}
	return shifts, rows.Err()
}

func (r *repoPG) ShiftsByStaff(ctx context.Context, staffID uuid.UUID) ([]*Shift, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, staff_id, start_time, end_time, ward, created_at
		FROM shift WHERE staff_id = $1 ORDER BY start_time`, staffID)
	if err != nil {
		return nil, err
	}
	return r.scanShifts(rows)
}

func (r *repoPG) ShiftsByDay(ctx context.Context, day time.Time) ([]*Shift, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, staff_id, start_time, end_time, ward, created_at
		FROM shift WHERE start_time::date = $1::date ORDER BY start_time`, day)
	if err != nil {
		return nil, err
	}
	return r.scanShifts(rows)
}
