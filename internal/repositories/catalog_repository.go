package repositories

import (
	"context"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	DB *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// ============================================
// Services (SAC-coded offerings)
// ============================================

func (r *CatalogRepository) CreateService(ctx context.Context, s *models.CatalogService) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO catalog_services(name, description, category, base_price, sac_code)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id`,
		s.Name, s.Description, s.Category, s.BasePrice, s.SACCode,
	).Scan(&s.ID)
}

func (r *CatalogRepository) GetService(ctx context.Context, id int) (*models.CatalogService, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, ''), COALESCE(category, ''), base_price, COALESCE(sac_code, '')
         FROM catalog_services WHERE id=$1`, id)

	var s models.CatalogService
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.BasePrice, &s.SACCode)
	return &s, err
}

func (r *CatalogRepository) ListServices(ctx context.Context, search string) ([]*models.CatalogService, error) {
	query := `SELECT id, name, COALESCE(description, ''), COALESCE(category, ''), base_price, COALESCE(sac_code, '')
              FROM catalog_services`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*models.CatalogService
	for rows.Next() {
		var s models.CatalogService
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.BasePrice, &s.SACCode); err != nil {
			return nil, err
		}
		services = append(services, &s)
	}
	return services, rows.Err()
}

func (r *CatalogRepository) UpdateService(ctx context.Context, s *models.CatalogService) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE catalog_services SET name=$1, description=$2, category=$3, base_price=$4, sac_code=$5
         WHERE id=$6`,
		s.Name, s.Description, s.Category, s.BasePrice, s.SACCode, s.ID)
	return err
}

func (r *CatalogRepository) DeleteService(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM catalog_services WHERE id=$1`, id)
	return err
}

// ============================================
// Parts (HSN-coded stock)
// ============================================

func (r *CatalogRepository) CreatePart(ctx context.Context, p *models.CatalogPart) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO catalog_parts(name, part_number, category, unit_price, hsn_code, stock_quantity)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id`,
		p.Name, p.PartNumber, p.Category, p.UnitPrice, p.HSNCode, p.StockQty,
	).Scan(&p.ID)
}

func (r *CatalogRepository) GetPart(ctx context.Context, id int) (*models.CatalogPart, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(part_number, ''), COALESCE(category, ''), unit_price, COALESCE(hsn_code, ''), stock_quantity
         FROM catalog_parts WHERE id=$1`, id)

	var p models.CatalogPart
	err := row.Scan(&p.ID, &p.Name, &p.PartNumber, &p.Category, &p.UnitPrice, &p.HSNCode, &p.StockQty)
	return &p, err
}

func (r *CatalogRepository) ListParts(ctx context.Context, search string) ([]*models.CatalogPart, error) {
	query := `SELECT id, name, COALESCE(part_number, ''), COALESCE(category, ''), unit_price, COALESCE(hsn_code, ''), stock_quantity
              FROM catalog_parts`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%' OR part_number ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []*models.CatalogPart
	for rows.Next() {
		var p models.CatalogPart
		if err := rows.Scan(&p.ID, &p.Name, &p.PartNumber, &p.Category, &p.UnitPrice, &p.HSNCode, &p.StockQty); err != nil {
			return nil, err
		}
		parts = append(parts, &p)
	}
	return parts, rows.Err()
}

func (r *CatalogRepository) UpdatePart(ctx context.Context, p *models.CatalogPart) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE catalog_parts SET name=$1, part_number=$2, category=$3, unit_price=$4, hsn_code=$5, stock_quantity=$6
         WHERE id=$7`,
		p.Name, p.PartNumber, p.Category, p.UnitPrice, p.HSNCode, p.StockQty, p.ID)
	return err
}

func (r *CatalogRepository) DeletePart(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM catalog_parts WHERE id=$1`, id)
	return err
}
