package repositories

import (
	"context"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepository struct {
	DB *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{DB: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO clients(name, phone, mobile, email, address, city, state, pincode, gstin, billing_address)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at`,
		c.Name, c.Phone, c.Mobile, c.Email, c.Address, c.City, c.State, c.Pincode, c.GSTIN, c.BillingAddress,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *ClientRepository) Get(ctx context.Context, id int) (*models.Client, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(phone, ''), COALESCE(mobile, ''), COALESCE(email, ''),
		        COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(pincode, ''),
		        COALESCE(gstin, ''), COALESCE(billing_address, ''), created_at
         FROM clients WHERE id=$1`, id)

	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Mobile, &c.Email,
		&c.Address, &c.City, &c.State, &c.Pincode, &c.GSTIN, &c.BillingAddress, &c.CreatedAt)
	return &c, err
}

// List returns clients, optionally filtered by a name/phone search term
func (r *ClientRepository) List(ctx context.Context, search string) ([]*models.Client, error) {
	query := `SELECT id, name, COALESCE(phone, ''), COALESCE(mobile, ''), COALESCE(email, ''),
	                 COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(pincode, ''),
	                 COALESCE(gstin, ''), COALESCE(billing_address, ''), created_at
              FROM clients`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%' OR phone LIKE '%' || $1 || '%' OR mobile LIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		var c models.Client
		err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Mobile, &c.Email,
			&c.Address, &c.City, &c.State, &c.Pincode, &c.GSTIN, &c.BillingAddress, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE clients SET name=$1, phone=$2, mobile=$3, email=$4, address=$5, city=$6,
		        state=$7, pincode=$8, gstin=$9, billing_address=$10
         WHERE id=$11`,
		c.Name, c.Phone, c.Mobile, c.Email, c.Address, c.City,
		c.State, c.Pincode, c.GSTIN, c.BillingAddress, c.ID)
	return err
}

func (r *ClientRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	return err
}

// CountDocuments returns how many invoices and quotations reference a client
func (r *ClientRepository) CountDocuments(ctx context.Context, id int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM invoices WHERE client_id=$1)
		      + (SELECT COUNT(*) FROM quotations WHERE client_id=$1)`, id,
	).Scan(&count)
	return count, err
}
