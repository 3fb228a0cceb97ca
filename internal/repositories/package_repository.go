package repositories

import (
	"context"
	"database/sql"

	"goaltips/internal/models"
)

type PackageRepository struct {
	DB *sql.DB
}

func (r *PackageRepository) CreatePackage(ctx context.Context, pkg models.Package) (models.Package, error) {
	query := `INSERT INTO packages (name, description, price, period, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, pkg.Name, pkg.Description, pkg.Price, pkg.Period, pkg.Status)
	if err != nil {
		return models.Package{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Package{}, err
	}
	return r.GetPackageByID(ctx, int(id))
}

func (r *PackageRepository) GetPackageByID(ctx context.Context, id int) (models.Package, error) {
	query := `SELECT id, name, description, price, period, status, created_at, updated_at FROM packages WHERE id = ?`
	var pkg models.Package
	var updated sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&pkg.ID, &pkg.Name, &pkg.Description, &pkg.Price, &pkg.Period, &pkg.Status, &pkg.CreatedAt, &updated)
	if err == sql.ErrNoRows {
		return models.Package{}, models.ErrPackageNotFound
	}
	if err != nil {
		return models.Package{}, err
	}
	if updated.Valid {
		t := updated.Time
		pkg.UpdatedAt = &t
	}
	return pkg, nil
}

func (r *PackageRepository) GetActivePackages(ctx context.Context) ([]models.Package, error) {
	query := `SELECT id, name, description, price, period, status, created_at, updated_at FROM packages WHERE status = 'active' ORDER BY price ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		var pkg models.Package
		var updated sql.NullTime
		if err := rows.Scan(&pkg.ID, &pkg.Name, &pkg.Description, &pkg.Price, &pkg.Period, &pkg.Status, &pkg.CreatedAt, &updated); err != nil {
			return nil, err
		}
		if updated.Valid {
			t := updated.Time
			pkg.UpdatedAt = &t
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *PackageRepository) UpdatePackage(ctx context.Context, pkg models.Package) (models.Package, error) {
	query := `UPDATE packages SET name = ?, description = ?, price = ?, period = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, pkg.Name, pkg.Description, pkg.Price, pkg.Period, pkg.Status, pkg.ID)
	if err != nil {
		return models.Package{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Package{}, err
	}
	if affected == 0 {
		return models.Package{}, models.ErrPackageNotFound
	}
	return r.GetPackageByID(ctx, pkg.ID)
}

func (r *PackageRepository) DeletePackage(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrPackageNotFound
	}
	return nil
}
