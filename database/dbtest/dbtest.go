// Package dbtest opens throwaway SQLite databases and seeds them for tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLite returns a migrated in-memory database private to the calling test.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	return db
}

func SeedUser(t testing.TB, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.test",
		FirstName:    username,
		PasswordHash: "hash",
	}

	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	return user
}

func SeedCategory(t testing.TB, db *gorm.DB, slug string, published bool) models.Category {
	t.Helper()

	category := models.Category{
		Title:       "Category " + slug,
		Description: "About " + slug,
		Slug:        slug,
		IsPublished: published,
	}

	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	return category
}

func SeedLocation(t testing.TB, db *gorm.DB, name string) models.Location {
	t.Helper()

	location := models.Location{Name: name, IsPublished: true}

	if err := db.Create(&location).Error; err != nil {
		t.Fatalf("create location: %v", err)
	}

	return location
}

// PostOption tweaks a seeded post before it is stored.
type PostOption func(*models.Post)

func Unpublished() PostOption {
	return func(p *models.Post) { p.IsPublished = false }
}

func PublishedAt(at time.Time) PostOption {
	return func(p *models.Post) { p.PubDate = at }
}

func AtLocation(location models.Location) PostOption {
	return func(p *models.Post) { p.LocationID = &location.ID }
}

func WithoutCategory() PostOption {
	return func(p *models.Post) { p.CategoryID = nil }
}

// SeedPost stores a published post dated one hour ago unless options say otherwise.
func SeedPost(t testing.TB, db *gorm.DB, author models.User, category models.Category, title string, opts ...PostOption) models.Post {
	t.Helper()

	post := models.Post{
		Title:       title,
		Text:        title + " text",
		PubDate:     time.Now().UTC().Add(-time.Hour),
		IsPublished: true,
		AuthorID:    author.ID,
		CategoryID:  &category.ID,
	}

	for _, opt := range opts {
		opt(&post)
	}

	if err := database.NewPostRepo(db).Add(&post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	return post
}

func SeedComment(t testing.TB, db *gorm.DB, author models.User, post models.Post, text string) models.Comment {
	t.Helper()

	comment := models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}

	if err := database.NewCommentRepo(db).Add(&comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	return comment
}
