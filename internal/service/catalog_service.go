package service

import (
	"context"
	"regexp"
	"time"

	"critica/internal/access"
	"critica/internal/cache"
	"critica/internal/models"
	"critica/internal/repository"
)

const (
	maxNameLen = 256
	maxSlugLen = 50
)

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CatalogService manages categories, genres and titles. All writes are
// admin-only; moderators are not catalog editors.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	titleRepo    repository.TitleRepository
	ratings      *cache.RatingCache
}

// TaxonomyInput creates a category or genre.
type TaxonomyInput struct {
	Actor access.Actor
	Name  string
	Slug  string
}

// TitleInput creates or updates a title. Nil pointer fields in an update
// leave the current value untouched.
type TitleInput struct {
	Actor        access.Actor
	Name         string
	Year         int
	Description  *string
	CategorySlug *string
	GenreSlugs   []string
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	titleRepo repository.TitleRepository,
	ratings *cache.RatingCache,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		titleRepo:    titleRepo,
		ratings:      ratings,
	}
}

func validateTaxonomy(name, slug string) error {
	if name == "" {
		return models.NewFieldValidationError("name", "Name is required")
	}
	if len(name) > maxNameLen {
		return models.NewFieldValidationError("name", "Name too long (max 256 characters)")
	}
	if slug == "" {
		return models.NewFieldValidationError("slug", "Slug is required")
	}
	if len(slug) > maxSlugLen {
		return models.NewFieldValidationError("slug", "Slug too long (max 50 characters)")
	}
	if !slugRe.MatchString(slug) {
		return models.NewFieldValidationError("slug", "Slug may only contain letters, numbers, hyphens and underscores")
	}
	return nil
}

// CreateCategory adds a taxonomy entry.
func (s *CatalogService) CreateCategory(ctx context.Context, in TaxonomyInput) (*models.Category, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.Catalog, Kind: access.Create}); err != nil {
		return nil, err
	}
	if err := validateTaxonomy(in.Name, in.Slug); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name, Slug: in.Slug}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories is open to anyone.
func (s *CatalogService) ListCategories(ctx context.Context, search string, limit, offset int) ([]models.Category, error) {
	return s.categoryRepo.List(ctx, search, limit, offset)
}

// DeleteCategory removes the category; dependent titles keep living with a
// null category.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor access.Actor, slug string) error {
	if err := access.Decide(actor, access.Action{Resource: access.Catalog, Kind: access.WriteObject}); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, slug)
}

// CreateGenre adds a taxonomy entry.
func (s *CatalogService) CreateGenre(ctx context.Context, in TaxonomyInput) (*models.Genre, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.Catalog, Kind: access.Create}); err != nil {
		return nil, err
	}
	if err := validateTaxonomy(in.Name, in.Slug); err != nil {
		return nil, err
	}
	genre := &models.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

// ListGenres is open to anyone.
func (s *CatalogService) ListGenres(ctx context.Context, search string, limit, offset int) ([]models.Genre, error) {
	return s.genreRepo.List(ctx, search, limit, offset)
}

// DeleteGenre removes the genre and detaches it from titles.
func (s *CatalogService) DeleteGenre(ctx context.Context, actor access.Actor, slug string) error {
	if err := access.Decide(actor, access.Action{Resource: access.Catalog, Kind: access.WriteObject}); err != nil {
		return err
	}
	return s.genreRepo.Delete(ctx, slug)
}

func validateTitleName(name string) error {
	if name == "" {
		return models.NewFieldValidationError("name", "Name is required")
	}
	if len(name) > maxNameLen {
		return models.NewFieldValidationError("name", "Name too long (max 256 characters)")
	}
	return nil
}

func validateYear(year int) error {
	if year > time.Now().Year() {
		return models.NewFieldValidationError("year", "Year must not be in the future")
	}
	return nil
}

// CreateTitle adds a catalogued work, resolving category and genre slugs.
func (s *CatalogService) CreateTitle(ctx context.Context, in TitleInput) (*models.Title, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.Catalog, Kind: access.Create}); err != nil {
		return nil, err
	}
	if err := validateTitleName(in.Name); err != nil {
		return nil, err
	}
	if err := validateYear(in.Year); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}

	if in.CategorySlug != nil && *in.CategorySlug != "" {
		category, err := s.categoryRepo.GetBySlug(ctx, *in.CategorySlug)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}
	if len(in.GenreSlugs) > 0 {
		genres, err := s.genreRepo.GetBySlugs(ctx, in.GenreSlugs)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}
	return s.GetTitle(ctx, title.ID)
}

// GetTitle returns the title with its derived rating attached.
func (s *CatalogService) GetTitle(ctx context.Context, id uint) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rating, ok := s.ratings.Get(ctx, id); ok {
		title.Rating = rating
		return title, nil
	}
	rating, err := s.titleRepo.ComputeRating(ctx, id)
	if err != nil {
		return nil, err
	}
	title.Rating = rating
	s.ratings.Set(ctx, id, rating)
	return title, nil
}

// ListTitles is open to anyone; ratings are computed in the listing query.
func (s *CatalogService) ListTitles(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]*models.Title, error) {
	return s.titleRepo.List(ctx, filter, limit, offset)
}

// UpdateTitle applies a partial edit to an existing title.
func (s *CatalogService) UpdateTitle(ctx context.Context, id uint, in TitleInput) (*models.Title, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.Catalog, Kind: access.WriteObject}); err != nil {
		return nil, err
	}

	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		if err := validateTitleName(in.Name); err != nil {
			return nil, err
		}
		title.Name = in.Name
	}
	if in.Year != 0 {
		if err := validateYear(in.Year); err != nil {
			return nil, err
		}
		title.Year = in.Year
	}
	if in.Description != nil {
		title.Description = in.Description
	}
	if in.CategorySlug != nil {
		if *in.CategorySlug == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categoryRepo.GetBySlug(ctx, *in.CategorySlug)
			if err != nil {
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	var genres []models.Genre
	replaceGenres := false
	if in.GenreSlugs != nil {
		genres, err = s.genreRepo.GetBySlugs(ctx, in.GenreSlugs)
		if err != nil {
			return nil, err
		}
		replaceGenres = true
	}

	if err := s.titleRepo.Update(ctx, title, genres, replaceGenres); err != nil {
		return nil, err
	}
	return s.GetTitle(ctx, id)
}

// DeleteTitle removes the title and cascades to reviews and comments.
func (s *CatalogService) DeleteTitle(ctx context.Context, actor access.Actor, id uint) error {
	if err := access.Decide(actor, access.Action{Resource: access.Catalog, Kind: access.WriteObject}); err != nil {
		return err
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.ratings.Invalidate(ctx, id)
	return nil
}
