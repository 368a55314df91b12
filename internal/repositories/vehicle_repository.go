package repositories

import (
	"context"

	"garage-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository struct {
	DB *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO vehicles(client_id, registration_number, brand, model, year, color,
		        fuel_type, vin_number, engine_number, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id, created_at`,
		v.ClientID, v.RegistrationNumber, v.Brand, v.Model, v.Year, v.Color,
		v.FuelType, v.VINNumber, v.EngineNumber, v.Notes,
	).Scan(&v.ID, &v.CreatedAt)
}

func (r *VehicleRepository) Get(ctx context.Context, id int) (*models.Vehicle, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, client_id, registration_number, COALESCE(brand, ''), COALESCE(model, ''),
		        COALESCE(year, 0), COALESCE(color, ''), COALESCE(fuel_type, ''),
		        COALESCE(vin_number, ''), COALESCE(engine_number, ''),
		        COALESCE(km_reading_in, 0), COALESCE(km_reading_out, 0),
		        insurance_expiry, COALESCE(notes, ''), created_at
         FROM vehicles WHERE id=$1`, id)

	var v models.Vehicle
	err := row.Scan(&v.ID, &v.ClientID, &v.RegistrationNumber, &v.Brand, &v.Model,
		&v.Year, &v.Color, &v.FuelType, &v.VINNumber, &v.EngineNumber,
		&v.KMReadingIn, &v.KMReadingOut, &v.InsuranceExpiry, &v.Notes, &v.CreatedAt)
	return &v, err
}

func (r *VehicleRepository) GetByRegistration(ctx context.Context, registration string) (*models.Vehicle, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, client_id, registration_number, COALESCE(brand, ''), COALESCE(model, ''),
		        COALESCE(year, 0), COALESCE(color, ''), COALESCE(fuel_type, ''),
		        COALESCE(vin_number, ''), COALESCE(engine_number, ''),
		        COALESCE(km_reading_in, 0), COALESCE(km_reading_out, 0),
		        insurance_expiry, COALESCE(notes, ''), created_at
         FROM vehicles WHERE UPPER(registration_number)=UPPER($1)`, registration)

	var v models.Vehicle
	err := row.Scan(&v.ID, &v.ClientID, &v.RegistrationNumber, &v.Brand, &v.Model,
		&v.Year, &v.Color, &v.FuelType, &v.VINNumber, &v.EngineNumber,
		&v.KMReadingIn, &v.KMReadingOut, &v.InsuranceExpiry, &v.Notes, &v.CreatedAt)
	return &v, err
}

// ListByClient returns all vehicles registered to a client
func (r *VehicleRepository) ListByClient(ctx context.Context, clientID int) ([]*models.Vehicle, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, client_id, registration_number, COALESCE(brand, ''), COALESCE(model, ''),
		        COALESCE(year, 0), COALESCE(color, ''), COALESCE(fuel_type, ''),
		        COALESCE(vin_number, ''), COALESCE(engine_number, ''),
		        COALESCE(km_reading_in, 0), COALESCE(km_reading_out, 0),
		        insurance_expiry, COALESCE(notes, ''), created_at
         FROM vehicles WHERE client_id=$1 ORDER BY registration_number`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVehicles(rows)
}

// List returns all vehicles, newest first
func (r *VehicleRepository) List(ctx context.Context) ([]*models.Vehicle, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, client_id, registration_number, COALESCE(brand, ''), COALESCE(model, ''),
		        COALESCE(year, 0), COALESCE(color, ''), COALESCE(fuel_type, ''),
		        COALESCE(vin_number, ''), COALESCE(engine_number, ''),
		        COALESCE(km_reading_in, 0), COALESCE(km_reading_out, 0),
		        insurance_expiry, COALESCE(notes, ''), created_at
         FROM vehicles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVehicles(rows)
}

func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE vehicles SET registration_number=$1, brand=$2, model=$3, year=$4, color=$5,
		        fuel_type=$6, vin_number=$7, engine_number=$8, km_reading_in=$9,
		        km_reading_out=$10, insurance_expiry=$11, notes=$12
         WHERE id=$13`,
		v.RegistrationNumber, v.Brand, v.Model, v.Year, v.Color,
		v.FuelType, v.VINNumber, v.EngineNumber, v.KMReadingIn,
		v.KMReadingOut, v.InsuranceExpiry, v.Notes, v.ID)
	return err
}

func (r *VehicleRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	return err
}

func scanVehicles(rows pgx.Rows) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		err := rows.Scan(&v.ID, &v.ClientID, &v.RegistrationNumber, &v.Brand, &v.Model,
			&v.Year, &v.Color, &v.FuelType, &v.VINNumber, &v.EngineNumber,
			&v.KMReadingIn, &v.KMReadingOut, &v.InsuranceExpiry, &v.Notes, &v.CreatedAt)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &v)
	}
	return vehicles, rows.Err()
}
