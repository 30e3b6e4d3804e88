package repository

import (
	"context"
	"database/sql"

	"critica/internal/models"

	"gorm.io/gorm"
)

// TitleFilter narrows a title listing. Zero values mean "no filter".
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
}

// TitleRepository defines the interface for title data operations
type TitleRepository interface {
	Create(ctx context.Context, title *models.Title) error
	GetByID(ctx context.Context, id uint) (*models.Title, error)
	List(ctx context.Context, filter TitleFilter, limit, offset int) ([]*models.Title, error)
	// Update persists the title's scalar fields; when replaceGenres is set
	// the genre association is replaced with the given set.
	Update(ctx context.Context, title *models.Title, genres []models.Genre, replaceGenres bool) error
	// Delete removes the title and cascades to its reviews and their comments.
	Delete(ctx context.Context, id uint) error
	// ComputeRating returns the mean review score, or nil with no reviews.
	ComputeRating(ctx context.Context, id uint) (*float64, error)
}

type titleRepository struct {
	db *gorm.DB
}

// NewTitleRepository creates a new TitleRepository
func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	// Omit("Genres.*") records join rows without upserting the genres themselves.
	if err := r.db.WithContext(ctx).Omit("Genres.*").Create(title).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *titleRepository) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	var title models.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		First(&title, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Title", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &title, nil
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, limit, offset int) ([]*models.Title, error) {
	q := r.db.WithContext(ctx).Model(&models.Title{}).
		Select("titles.*, AVG(reviews.score) AS rating").
		Joins("LEFT JOIN reviews ON reviews.title_id = titles.id").
		Group("titles.id").
		Order("titles.name").
		Limit(limit).
		Offset(offset).
		Preload("Category").
		Preload("Genres")

	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filter.GenreSlug)
	}
	if filter.Name != "" {
		q = q.Where("titles.name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != 0 {
		q = q.Where("titles.year = ?", filter.Year)
	}

	var titles []*models.Title
	if err := q.Find(&titles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return titles, nil
}

func (r *titleRepository) Update(ctx context.Context, title *models.Title, genres []models.Genre, replaceGenres bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres").Save(title).Error; err != nil {
			return err
		}
		if replaceGenres {
			if err := tx.Model(title).Association("Genres").Replace(genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id uint) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id IN (?)",
			tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Title{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *titleRepository) ComputeRating(ctx context.Context, id uint) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("title_id = ?", id).
		Select("AVG(score)").
		Row().Scan(&avg)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !avg.Valid {
		// no reviews: no rating, deliberately not zero
		return nil, nil
	}
	rating := avg.Float64
	return &rating, nil
}
