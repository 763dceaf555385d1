package registry

import (
	"context"
	"log"

	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/database/repo/images"
)

// DefaultCatalogue returns the fixed set of site images inserted into an
// empty registry so the UI is never blank. Paths are the catalogue identity:
// seeding skips any entry whose path already exists.
func DefaultCatalogue() []models.Image {
	return []models.Image{
		{
			Name:        "Jeux",
			Path:        "/jeux.jpg",
			Origin:      models.OriginLocal,
			Description: "Photo aire de jeux colorée",
			UsedIn:      models.StringList{"Services (Pleines de jeux)", "Playgrounds"},
		},
		{
			Name:        "Entretien",
			Path:        "/entretien.jpg",
			Origin:      models.OriginLocal,
			Description: "Photo entretien de revêtement",
			UsedIn:      models.StringList{"Services (Entretien)", "Maintenance"},
		},
		{
			Name:        "Gazon",
			Path:        "/Gazon artificiel vert luxuriant couvrant une surface lisse.jpg",
			Origin:      models.OriginLocal,
			Description: "Gazon artificiel vert luxuriant",
			UsedIn:      models.StringList{"About"},
		},
		{
			Name:        "Terrain de sport",
			Path:        "https://images.unsplash.com/photo-1540747913346-19e32dc3e97e",
			Origin:      models.OriginExternal,
			Description: "Terrain de sport avec gazon synthétique",
			UsedIn:      models.StringList{"Services (Terrains de sports)", "Sports (Gazon synthétique)"},
		},
		{
			Name:        "Hero background",
			Path:        "https://images.unsplash.com/photo-1620366392312-a882ba99461c",
			Origin:      models.OriginExternal,
			Description: "Image d'arrière-plan de la section Hero",
			UsedIn:      models.StringList{"Hero (arrière-plan)"},
		},
		{
			Name:        "Multisport",
			Path:        "https://images.unsplash.com/photo-1468259275264-bbe089c59d1a",
			Origin:      models.OriginExternal,
			Description: "Terrain multisport",
			UsedIn:      models.StringList{"Sports (Multisport)"},
		},
		{
			Name:        "Piste d'athlétisme",
			Path:        "https://images.unsplash.com/photo-1595231712325-c9626d50b606",
			Origin:      models.OriginExternal,
			Description: "Piste d'athlétisme",
			UsedIn:      models.StringList{"Sports (Piste d'athlétisme)"},
		},
		{
			Name:        "ET layer",
			Path:        "https://images.unsplash.com/photo-1526232761682-d26e03ac148e",
			Origin:      models.OriginExternal,
			Description: "Sous-couche ET layer",
			UsedIn:      models.StringList{"Sports (ET layer)"},
		},
		{
			Name:        "Logo Abofield",
			Path:        "/logo_abofield.jpeg",
			Origin:      models.OriginLocal,
			Description: "Logo d'Abofield",
			UsedIn:      models.StringList{"Favicon", "Métadonnées Open Graph"},
		},
	}
}

// Seeder inserts the default catalogue into the images table.
type Seeder struct {
	repo images.RepositoryInterface
}

// NewSeeder creates a seeder.
func NewSeeder(repo images.RepositoryInterface) *Seeder {
	return &Seeder{repo: repo}
}

// EnsureSeeded seeds only when the table is empty. Returns the number of
// records inserted.
func (s *Seeder) EnsureSeeded(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	return s.Seed(ctx)
}

// Seed inserts every catalogue entry whose path is not already present.
// A failed insert is logged and does not abort the remaining entries.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	inserted := 0

	for _, entry := range DefaultCatalogue() {
		exists, err := s.repo.ExistsByPath(ctx, entry.Path)
		if err != nil {
			log.Printf("Failed to check for existing image %q: %v", entry.Name, err)
			continue
		}
		if exists {
			continue
		}

		record := entry
		if err := s.repo.Create(ctx, &record); err != nil {
			log.Printf("Failed to seed image %q: %v", entry.Name, err)
			continue
		}
		inserted++
	}

	if inserted > 0 {
		log.Printf("Seeded %d default images", inserted)
	}
	return inserted, nil
}
