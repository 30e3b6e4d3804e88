package service

import (
	"context"
	"testing"
	"time"

	"critica/internal/access"
	"critica/internal/cache"
	"critica/internal/models"
	"critica/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn    func(context.Context, *models.Category) error
	getBySlugFn func(context.Context, string) (*models.Category, error)
	listFn      func(context.Context, string, int, int) ([]models.Category, error)
	deleteFn    func(context.Context, string) error
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) List(ctx context.Context, search string, limit, offset int) ([]models.Category, error) {
	return s.listFn(ctx, search, limit, offset)
}
func (s *categoryRepoStub) Delete(ctx context.Context, slug string) error {
	return s.deleteFn(ctx, slug)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn: func(context.Context, *models.Category) error { return nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Category, error) {
			return &models.Category{ID: 1, Name: "Movies", Slug: slug}, nil
		},
		listFn: func(context.Context, string, int, int) ([]models.Category, error) {
			return nil, nil
		},
		deleteFn: func(context.Context, string) error { return nil },
	}
}

// genreRepoStub is a stub for repository.GenreRepository.
type genreRepoStub struct {
	createFn     func(context.Context, *models.Genre) error
	getBySlugFn  func(context.Context, string) (*models.Genre, error)
	getBySlugsFn func(context.Context, []string) ([]models.Genre, error)
	listFn       func(context.Context, string, int, int) ([]models.Genre, error)
	deleteFn     func(context.Context, string) error
}

func (s *genreRepoStub) Create(ctx context.Context, genre *models.Genre) error {
	return s.createFn(ctx, genre)
}
func (s *genreRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *genreRepoStub) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	return s.getBySlugsFn(ctx, slugs)
}
func (s *genreRepoStub) List(ctx context.Context, search string, limit, offset int) ([]models.Genre, error) {
	return s.listFn(ctx, search, limit, offset)
}
func (s *genreRepoStub) Delete(ctx context.Context, slug string) error {
	return s.deleteFn(ctx, slug)
}

func noopGenreRepo() *genreRepoStub {
	return &genreRepoStub{
		createFn: func(context.Context, *models.Genre) error { return nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Genre, error) {
			return &models.Genre{ID: 1, Name: "Drama", Slug: slug}, nil
		},
		getBySlugsFn: func(_ context.Context, slugs []string) ([]models.Genre, error) {
			genres := make([]models.Genre, 0, len(slugs))
			for i, slug := range slugs {
				genres = append(genres, models.Genre{ID: uint(i + 1), Name: slug, Slug: slug})
			}
			return genres, nil
		},
		listFn: func(context.Context, string, int, int) ([]models.Genre, error) {
			return nil, nil
		},
		deleteFn: func(context.Context, string) error { return nil },
	}
}

// titleRepoStub is a stub for repository.TitleRepository.
type titleRepoStub struct {
	createFn        func(context.Context, *models.Title) error
	getByIDFn       func(context.Context, uint) (*models.Title, error)
	listFn          func(context.Context, repository.TitleFilter, int, int) ([]*models.Title, error)
	updateFn        func(context.Context, *models.Title, []models.Genre, bool) error
	deleteFn        func(context.Context, uint) error
	computeRatingFn func(context.Context, uint) (*float64, error)
}

func (s *titleRepoStub) Create(ctx context.Context, title *models.Title) error {
	return s.createFn(ctx, title)
}
func (s *titleRepoStub) GetByID(ctx context.Context, id uint) (*models.Title, error) {
	return s.getByIDFn(ctx, id)
}
func (s *titleRepoStub) List(ctx context.Context, filter repository.TitleFilter, limit, offset int) ([]*models.Title, error) {
	return s.listFn(ctx, filter, limit, offset)
}
func (s *titleRepoStub) Update(ctx context.Context, title *models.Title, genres []models.Genre, replaceGenres bool) error {
	return s.updateFn(ctx, title, genres, replaceGenres)
}
func (s *titleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *titleRepoStub) ComputeRating(ctx context.Context, id uint) (*float64, error) {
	return s.computeRatingFn(ctx, id)
}

func noopTitleRepo() *titleRepoStub {
	return &titleRepoStub{
		createFn: func(_ context.Context, title *models.Title) error {
			title.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Title, error) {
			return &models.Title{ID: id, Name: "The Green Mile", Year: 1999}, nil
		},
		listFn: func(context.Context, repository.TitleFilter, int, int) ([]*models.Title, error) {
			return nil, nil
		},
		updateFn: func(context.Context, *models.Title, []models.Genre, bool) error {
			return nil
		},
		deleteFn: func(context.Context, uint) error { return nil },
		computeRatingFn: func(context.Context, uint) (*float64, error) {
			return nil, nil
		},
	}
}

func newTestCatalogService(cat *categoryRepoStub, gen *genreRepoStub, tit *titleRepoStub) *CatalogService {
	return NewCatalogService(cat, gen, tit, cache.NewRatingCache(nil))
}

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := newTestCatalogService(noopCategoryRepo(), noopGenreRepo(), noopTitleRepo())

	tests := []struct {
		name     string
		actor    access.Actor
		wantCode string
	}{
		{"anonymous", access.Actor{}, models.CodeAuthentication},
		{"user", access.Actor{ID: 1, Role: models.RoleUser, Authenticated: true}, models.CodePermission},
		{"moderator", access.Actor{ID: 1, Role: models.RoleModerator, Authenticated: true}, models.CodePermission},
		{"admin", access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCategory(context.Background(), TaxonomyInput{
				Actor: tt.actor,
				Name:  "Movies",
				Slug:  "movies",
			})
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestCreateTaxonomyValidation(t *testing.T) {
	t.Parallel()

	svc := newTestCatalogService(noopCategoryRepo(), noopGenreRepo(), noopTitleRepo())
	adminActor := access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}

	tests := []struct {
		name      string
		input     TaxonomyInput
		wantField string
	}{
		{"missing name", TaxonomyInput{Actor: adminActor, Slug: "movies"}, "name"},
		{"missing slug", TaxonomyInput{Actor: adminActor, Name: "Movies"}, "slug"},
		{"slug with spaces", TaxonomyInput{Actor: adminActor, Name: "Movies", Slug: "bad slug"}, "slug"},
		{"slug with unicode", TaxonomyInput{Actor: adminActor, Name: "Movies", Slug: "фильмы"}, "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGenre(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantField, fieldOf(t, err))
		})
	}
}

func TestCreateTitleRejectsFutureYear(t *testing.T) {
	t.Parallel()

	svc := newTestCatalogService(noopCategoryRepo(), noopGenreRepo(), noopTitleRepo())

	_, err := svc.CreateTitle(context.Background(), TitleInput{
		Actor: access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true},
		Name:  "From the Future",
		Year:  time.Now().Year() + 1,
	})
	require.Error(t, err)
	assert.Equal(t, "year", fieldOf(t, err))
}

func TestCreateTitleResolvesSlugs(t *testing.T) {
	t.Parallel()

	cat := noopCategoryRepo()
	gen := noopGenreRepo()
	tit := noopTitleRepo()

	var created *models.Title
	tit.createFn = func(_ context.Context, title *models.Title) error {
		title.ID = 5
		created = title
		return nil
	}
	svc := newTestCatalogService(cat, gen, tit)

	categorySlug := "movies"
	_, err := svc.CreateTitle(context.Background(), TitleInput{
		Actor:        access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true},
		Name:         "The Green Mile",
		Year:         1999,
		CategorySlug: &categorySlug,
		GenreSlugs:   []string{"drama", "crime"},
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	require.NotNil(t, created.CategoryID)
	assert.Equal(t, uint(1), *created.CategoryID)
	assert.Len(t, created.Genres, 2)
}

func TestCreateTitleUnknownCategory(t *testing.T) {
	t.Parallel()

	cat := noopCategoryRepo()
	cat.getBySlugFn = func(_ context.Context, slug string) (*models.Category, error) {
		return nil, models.NewNotFoundError("Category", slug)
	}
	svc := newTestCatalogService(cat, noopGenreRepo(), noopTitleRepo())

	missing := "nope"
	_, err := svc.CreateTitle(context.Background(), TitleInput{
		Actor:        access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true},
		Name:         "Orphan",
		Year:         2000,
		CategorySlug: &missing,
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestGetTitleFallsBackToComputedRating(t *testing.T) {
	t.Parallel()

	tit := noopTitleRepo()
	rating := 6.5
	computed := 0
	tit.computeRatingFn = func(context.Context, uint) (*float64, error) {
		computed++
		return &rating, nil
	}
	svc := newTestCatalogService(noopCategoryRepo(), noopGenreRepo(), tit)

	title, err := svc.GetTitle(context.Background(), 1)
	require.NoError(t, err)

	// No cache behind this service, so the aggregate query runs.
	assert.Equal(t, 1, computed)
	require.NotNil(t, title.Rating)
	assert.InDelta(t, 6.5, *title.Rating, 0.001)
}

func TestUpdateTitleClearsCategory(t *testing.T) {
	t.Parallel()

	tit := noopTitleRepo()
	categoryID := uint(3)
	tit.getByIDFn = func(_ context.Context, id uint) (*models.Title, error) {
		return &models.Title{ID: id, Name: "Old", Year: 1990, CategoryID: &categoryID}, nil
	}
	var updated *models.Title
	tit.updateFn = func(_ context.Context, title *models.Title, _ []models.Genre, _ bool) error {
		updated = title
		return nil
	}
	svc := newTestCatalogService(noopCategoryRepo(), noopGenreRepo(), tit)

	empty := ""
	_, err := svc.UpdateTitle(context.Background(), 1, TitleInput{
		Actor:        access.Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true},
		CategorySlug: &empty,
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Nil(t, updated.CategoryID)
}

func TestDeleteTitleRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := newTestCatalogService(noopCategoryRepo(), noopGenreRepo(), noopTitleRepo())

	err := svc.DeleteTitle(context.Background(),
		access.Actor{ID: 1, Role: models.RoleModerator, Authenticated: true}, 1)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodePermission, appErr.Code)
}
