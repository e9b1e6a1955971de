package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careaxis/hms/internal/platform/crypt"
	"github.com/careaxis/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool   *pgxpool.Pool
	cipher *crypt.FieldCipher
}

// NewRepoPG creates a billing repository. A nil cipher stores policy numbers
// in the clear (development only).
func NewRepoPG(pool *pgxpool.Pool, cipher *crypt.FieldCipher) Repository {
	return &repoPG{pool: pool, cipher: cipher}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const invoiceCols = `id, number, patient_id, status, total_cents, currency, issued_at, due_at, created_at, updated_at`

func (r *repoPG) scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.PatientID, &inv.Status, &inv.TotalCents,
		&inv.Currency, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt)
	return &inv, err
}

// CreateInvoice writes the invoice and its line items in one transaction.
func (r *repoPG) CreateInvoice(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO invoice (id, number, patient_id, status, total_cents, currency, issued_at, due_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			inv.ID, inv.Number, inv.PatientID, inv.Status, inv.TotalCents, inv.Currency,
			inv.IssuedAt, inv.DueAt); err != nil {
			return err
		}
		for i := range inv.Items {
			item := &inv.Items[i]
			item.ID = uuid.New()
			item.InvoiceID = inv.ID
			if _, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO invoice_item (id, invoice_id, description, quantity, unit_cents)
				VALUES ($1,$2,$3,$4,$5)`,
				item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitCents); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := r.scanInvoice(r.conn(ctx).QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoice WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_cents, created_at
		FROM invoice_item WHERE invoice_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity,
			&item.UnitCents, &item.CreatedAt); err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, item)
	}
	return inv, rows.Err()
}

func (r *repoPG) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status=$2, total_cents=$3, issued_at=$4, due_at=$5, updated_at=NOW()
		WHERE id = $1`,
		inv.ID, inv.Status, inv.TotalCents, inv.IssuedAt, inv.DueAt)
	return err
}

func (r *repoPG) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoice WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListInvoices(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Invoice, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	if patientID != uuid.Nil {
		args = append(args, patientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoice`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `SELECT ` + invoiceCols + ` FROM invoice` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, rows.Err()
}

func (r *repoPG) encryptPolicyNumber(p *InsurancePolicy) (*string, error) {
	if p.PolicyNumber == nil || r.cipher == nil {
		return p.PolicyNumber, nil
	}
	enc, err := r.cipher.Encrypt(*p.PolicyNumber)
	if err != nil {
		return nil, fmt.Errorf("encrypt policy number: %w", err)
	}
	return &enc, nil
}

func (r *repoPG) decryptPolicyNumber(p *InsurancePolicy) error {
	if p.PolicyNumber == nil || r.cipher == nil {
		return nil
	}
	plain, err := r.cipher.Decrypt(*p.PolicyNumber)
	if err != nil {
		return fmt.Errorf("decrypt policy number: %w", err)
	}
	p.PolicyNumber = &plain
	return nil
}

const policyCols = `id, patient_id, provider, policy_number_encrypted, group_number,
	valid_from, valid_to, created_at, updated_at`

func (r *repoPG) scanPolicy(row pgx.Row) (*InsurancePolicy, error) {
	var p InsurancePolicy
	err := row.Scan(&p.ID, &p.PatientID, &p.Provider, &p.PolicyNumber, &p.GroupNumber,
		&p.ValidFrom, &p.ValidTo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.decryptPolicyNumber(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) AddPolicy(ctx context.Context, p *InsurancePolicy) error {
	p.ID = uuid.New()
	num, err := r.encryptPolicyNumber(p)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_policy (id, patient_id, provider, policy_number_encrypted, group_number, valid_from, valid_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PatientID, p.Provider, num, p.GroupNumber, p.ValidFrom, p.ValidTo)
	return err
}

func (r *repoPG) GetPolicy(ctx context.Context, id uuid.UUID) (*InsurancePolicy, error) {
	return r.scanPolicy(r.conn(ctx).QueryRow(ctx, `SELECT `+policyCols+` FROM insurance_policy WHERE id = $1`, id))
}

func (r *repoPG) UpdatePolicy(ctx context.Context, p *InsurancePolicy) error {
	num, err := r.encryptPolicyNumber(p)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE insurance_policy SET provider=$2, policy_number_encrypted=$3, group_number=$4,
			valid_from=$5, valid_to=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Provider, num, p.GroupNumber, p.ValidFrom, p.ValidTo)
	return err
}

func (r *repoPG) DeletePolicy(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurance_policy WHERE id = $1`, id)
	return err
}

func (r *repoPG) PoliciesByPatient(ctx context.Context, patientID uuid.UUID) ([]*InsurancePolicy, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+policyCols+` FROM insurance_policy WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*InsurancePolicy
	for rows.Next() {
		p, err := r.scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
