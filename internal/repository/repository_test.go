package repository

import (
	"context"
	"testing"

	"critica/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey
// the same way they do against postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.SetupJoinTable(&models.Title{}, "Genres", &models.TitleGenre{}); err != nil {
		t.Fatalf("setup join table: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.TitleGenre{},
		&models.Review{},
		&models.Comment{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Username:         gofakeit.Username(),
		Email:            gofakeit.Email(),
		Role:             models.RoleUser,
		ConfirmationCode: models.ConfirmationCodePlaceholder,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTitle(t *testing.T, db *gorm.DB) *models.Title {
	t.Helper()
	title := &models.Title{
		Name: gofakeit.MovieName(),
		Year: gofakeit.Number(1950, 2020),
	}
	if err := db.Create(title).Error; err != nil {
		t.Fatalf("seed title: %v", err)
	}
	return title
}

func seedReview(t *testing.T, db *gorm.DB, authorID, titleID uint, score int) *models.Review {
	t.Helper()
	review := &models.Review{
		AuthorID: authorID,
		TitleID:  titleID,
		Text:     gofakeit.Sentence(8),
		Score:    score,
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return review
}

func seedComment(t *testing.T, db *gorm.DB, authorID, reviewID uint) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		AuthorID: authorID,
		ReviewID: reviewID,
		Text:     gofakeit.Sentence(5),
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return comment
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func ctx() context.Context {
	return context.Background()
}
