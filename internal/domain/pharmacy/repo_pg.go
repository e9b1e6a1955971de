package pharmacy

import (
	"context"
	"fmt"

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

const medCols = `id, name, generic_name, form, strength, code, active, created_at, updated_at`

func (r *repoPG) scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Name, &m.Generic, &m.Form, &m.Strength, &m.Code, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medication (id, name, generic_name, form, strength, code, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Name, m.Generic, m.Form, m.Strength, m.Code, m.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return r.scanMedication(r.conn(ctx).QueryRow(ctx, `SELECT `+medCols+` FROM medication WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medication SET name=$2, generic_name=$3, form=$4, strength=$5, code=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Generic, m.Form, m.Strength, m.Code, m.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, nameFilter string, limit, offset int) ([]*Medication, int, error) {
	where := ""
	args := []interface{}{}
	if nameFilter != "" {
		where = ` WHERE name ILIKE '%' || $1 || '%' OR generic_name ILIKE '%' || $1 || '%'`
		args = append(args, nameFilter)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medication`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + medCols + ` FROM medication` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Medication
	for rows.Next() {
		m, err := r.scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddLot(ctx context.Context, l *InventoryLot) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO inventory_lot (id, medication_id, lot_number, quantity, expires_at, received_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.MedicationID, l.LotNumber, l.Quantity, l.ExpiresAt, l.ReceivedAt)
	return err
}

func (r *repoPG) UpdateLot(ctx context.Context, l *InventoryLot) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE inventory_lot SET quantity=$2, expires_at=$3, updated_at=NOW() WHERE id = $1`,
		l.ID, l.Quantity, l.ExpiresAt)
	return err
}

func (r *repoPG) RemoveLot(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM inventory_lot WHERE id = $1`, id)
	return err
}

func (r *repoPG) LotsByMedication(ctx context.Context, medicationID uuid.UUID) ([]*InventoryLot, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, medication_id, lot_number, quantity, expires_at, received_at, created_at, updated_at
		FROM inventory_lot WHERE medication_id = $1 ORDER BY expires_at`, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []*InventoryLot
	for rows.Next() {
		var l InventoryLot
		if err := rows.Scan(&l.ID, &l.MedicationID, &l.LotNumber, &l.Quantity, &l.ExpiresAt,
			&l.ReceivedAt, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lots = append(lots, &l)
	}
	return lots, rows.Err()
}
