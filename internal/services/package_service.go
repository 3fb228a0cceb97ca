package services

import (
	"context"

	"goaltips/internal/models"
	"goaltips/internal/repositories"
)

type PackageService struct {
	PackageRepo *repositories.PackageRepository
}

func (s *PackageService) CreatePackage(ctx context.Context, pkg models.Package) (models.Package, error) {
	if pkg.Status == "" {
		pkg.Status = "active"
	}
	return s.PackageRepo.CreatePackage(ctx, pkg)
}

func (s *PackageService) GetPackageByID(ctx context.Context, id int) (models.Package, error) {
	return s.PackageRepo.GetPackageByID(ctx, id)
}

func (s *PackageService) GetActivePackages(ctx context.Context) ([]models.Package, error) {
	return s.PackageRepo.GetActivePackages(ctx)
}

func (s *PackageService) UpdatePackage(ctx context.Context, pkg models.Package) (models.Package, error) {
	return s.PackageRepo.UpdatePackage(ctx, pkg)
}

func (s *PackageService) DeletePackage(ctx context.Context, id int) error {
	return s.PackageRepo.DeletePackage(ctx, id)
}
