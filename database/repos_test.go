package database_test

import (
	"errors"
	"testing"

	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/database/dbtest"
	"github.com/lonlait/blogicum/models"
	"gorm.io/gorm"
)

func TestUserRepoProfileUpdateAndUniqueness(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := database.NewUserRepo(db)

	alice := dbtest.SeedUser(t, db, "alice")
	dbtest.SeedUser(t, db, "bob")

	taken, err := repo.UsernameTaken("bob", alice.ID)
	if err != nil || !taken {
		t.Fatalf("expected bob to be taken: %v", err)
	}

	taken, err = repo.UsernameTaken("alice", alice.ID)
	if err != nil || taken {
		t.Fatalf("expected own username to be free: %v", err)
	}

	alice.Username = "alice2"
	alice.Email = "new@example.test"
	alice.LastName = "Liddell"
	alice.PasswordHash = "must not change"
	if err := repo.UpdateProfile(&alice); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	stored, err := repo.FindByUsername("alice2")
	if err != nil {
		t.Fatalf("find renamed user: %v", err)
	}
	if stored.Email != "new@example.test" || stored.LastName != "Liddell" {
		t.Fatalf("profile fields not saved: %+v", stored)
	}
	if stored.PasswordHash != "hash" {
		t.Fatalf("password hash must not be touched by profile edits")
	}

	duplicate := models.User{Username: "bob", PasswordHash: "x"}
	if err := repo.Add(&duplicate); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}
}

func TestDeletingUserCascadesPostsAndComments(t *testing.T) {
	db := dbtest.NewSQLite(t)
	author := dbtest.SeedUser(t, db, "mallory")
	reader := dbtest.SeedUser(t, db, "niaj")
	category := dbtest.SeedCategory(t, db, "gone", true)
	post := dbtest.SeedPost(t, db, author, category, "doomed")
	readerPost := dbtest.SeedPost(t, db, reader, category, "survives")
	dbtest.SeedComment(t, db, author, readerPost, "by mallory")

	if err := database.NewUserRepo(db).Delete(author.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := database.NewPostRepo(db).FindByID(post.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected authored post to be deleted, got %v", err)
	}

	comments, err := database.NewCommentRepo(db).ForPost(readerPost.ID)
	if err != nil || len(comments) != 0 {
		t.Fatalf("expected authored comments to be deleted, got %d (%v)", len(comments), err)
	}
}

func TestDeletingCategoryAndLocationNullsReferences(t *testing.T) {
	db := dbtest.NewSQLite(t)
	author := dbtest.SeedUser(t, db, "olivia")
	category := dbtest.SeedCategory(t, db, "temporary", true)
	location := dbtest.SeedLocation(t, db, "Nowhere")
	post := dbtest.SeedPost(t, db, author, category, "orphan", dbtest.AtLocation(location))

	if err := database.NewCategoryRepo(db).Delete(category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if err := database.NewLocationRepo(db).Delete(location.ID); err != nil {
		t.Fatalf("delete location: %v", err)
	}

	stored, err := database.NewPostRepo(db).FindByID(post.ID)
	if err != nil {
		t.Fatalf("post should survive: %v", err)
	}
	if stored.CategoryID != nil || stored.LocationID != nil {
		t.Fatalf("expected references to be nulled, got %+v", stored)
	}
}

func TestCategoryRepoPublishedSlugLookup(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := database.NewCategoryRepo(db)

	dbtest.SeedCategory(t, db, "public", true)
	dbtest.SeedCategory(t, db, "secret", false)

	if found, err := repo.FindPublishedBySlug("public"); err != nil || found.Slug != "public" {
		t.Fatalf("expected public category: %v", err)
	}
	if _, err := repo.FindPublishedBySlug("secret"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected unpublished category to be hidden, got %v", err)
	}
	if _, err := repo.FindPublishedBySlug("missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected missing category to be not found, got %v", err)
	}

	clash := models.Category{Title: "Again", Description: "dup", Slug: "public", IsPublished: true}
	if err := repo.Add(&clash); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected slug uniqueness, got %v", err)
	}

	all, err := repo.FindAll()
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 categories, got %d (%v)", len(all), err)
	}

	if err := repo.SetPublished("secret", true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := repo.FindPublishedBySlug("secret"); err != nil {
		t.Fatalf("expected published category after SetPublished: %v", err)
	}
	if err := repo.SetPublished("missing", true); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for unknown slug, got %v", err)
	}
}

func TestCommentRepoScopesByPost(t *testing.T) {
	db := dbtest.NewSQLite(t)
	author := dbtest.SeedUser(t, db, "peggy")
	category := dbtest.SeedCategory(t, db, "talk", true)
	first := dbtest.SeedPost(t, db, author, category, "first")
	second := dbtest.SeedPost(t, db, author, category, "second")

	older := dbtest.SeedComment(t, db, author, first, "older")
	dbtest.SeedComment(t, db, author, first, "newer")

	repo := database.NewCommentRepo(db)

	comments, err := repo.ForPost(first.ID)
	if err != nil {
		t.Fatalf("for post: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "older" || comments[0].Author.Username != "peggy" {
		t.Fatalf("unexpected comments %+v", comments)
	}

	if _, err := repo.FindInPost(older.ID, second.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected comment lookup through the wrong post to fail, got %v", err)
	}

	older.Text = "edited"
	if err := repo.UpdateText(&older); err != nil {
		t.Fatalf("update text: %v", err)
	}

	stored, err := repo.FindInPost(older.ID, first.ID)
	if err != nil || stored.Text != "edited" {
		t.Fatalf("expected edited text, got %+v (%v)", stored, err)
	}

	if err := repo.Delete(older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if left, _ := repo.ForPost(first.ID); len(left) != 1 {
		t.Fatalf("expected 1 comment left, got %d", len(left))
	}
}
