package repository

import (
	"context"

	"critica/internal/models"

	"gorm.io/gorm"
)

// GenreRepository defines the interface for genre data operations
type GenreRepository interface {
	Create(ctx context.Context, genre *models.Genre) error
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	// GetBySlugs resolves all given slugs; any unknown slug is an error.
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	List(ctx context.Context, search string, limit, offset int) ([]models.Genre, error)
	// Delete removes the genre and nulls its join rows; titles survive.
	Delete(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository creates a new GenreRepository
func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return models.NewConflictError("slug", "A genre with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Genre", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &genre, nil
}

func (r *genreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var genres []models.Genre
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&genres).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(genres) != len(slugs) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range slugs {
			if !found[slug] {
				return nil, models.NewNotFoundError("Genre", slug)
			}
		}
	}
	return genres, nil
}

func (r *genreRepository) List(ctx context.Context, search string, limit, offset int) ([]models.Genre, error) {
	var genres []models.Genre
	q := r.db.WithContext(ctx).Order("name").Limit(limit).Offset(offset)
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if err := q.Find(&genres).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return genres, nil
}

func (r *genreRepository) Delete(ctx context.Context, slug string) error {
	genre, err := r.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TitleGenre{}).
			Where("genre_id = ?", genre.ID).
			Update("genre_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Genre{}, genre.ID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
