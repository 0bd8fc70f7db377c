package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/lonlait/blogicum/database/dbtest"
	"github.com/lonlait/blogicum/models"
)

func TestProfileShowsDraftsOnlyToOwner(t *testing.T) {
	app := newTestApp(t)
	alice := dbtest.SeedUser(t, app.db, "alice")
	bob := dbtest.SeedUser(t, app.db, "bob")
	news := dbtest.SeedCategory(t, app.db, "news", true)

	dbtest.SeedPost(t, app.db, alice, news, "Public thoughts")
	dbtest.SeedPost(t, app.db, alice, news, "Private draft", dbtest.Unpublished())
	dbtest.SeedPost(t, app.db, alice, news, "Uncategorised note", dbtest.WithoutCategory())

	own := app.get("/profile/alice/", &alice)
	expectStatus(t, own, http.StatusOK)
	expectBody(t, own, "Public thoughts", true)
	expectBody(t, own, "Private draft", true)
	expectBody(t, own, "Uncategorised note", true)
	expectBody(t, own, `href="/edit_profile/"`, true)

	for _, viewer := range []*models.User{nil, &bob} {
		rec := app.get("/profile/alice/", viewer)
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, "Public thoughts", true)
		expectBody(t, rec, "Private draft", false)
		expectBody(t, rec, "Uncategorised note", false)
		expectBody(t, rec, `href="/edit_profile/"`, false)
	}

	expectStatus(t, app.get("/profile/nobody/", nil), http.StatusNotFound)
}

func TestEditProfileUpdatesOnlyTheViewer(t *testing.T) {
	app := newTestApp(t)
	alice := dbtest.SeedUser(t, app.db, "alice")
	dbtest.SeedUser(t, app.db, "bob")

	form := app.get("/edit_profile/", &alice)
	expectStatus(t, form, http.StatusOK)
	expectBody(t, form, `value="alice"`, true)

	taken := app.post("/edit_profile/", &alice, url.Values{"username": {"bob"}, "email": {"a@example.test"}})
	expectStatus(t, taken, http.StatusOK)
	expectBody(t, taken, "already exists", true)

	invalid := app.post("/edit_profile/", &alice, url.Values{"username": {"no spaces"}, "email": {"not-an-email"}})
	expectStatus(t, invalid, http.StatusOK)
	expectBody(t, invalid, "Enter a valid username.", true)
	expectBody(t, invalid, "Enter a valid email address.", true)

	rec := app.post("/edit_profile/", &alice, url.Values{
		"username":   {"alice.l"},
		"email":      {"alice@example.test"},
		"first_name": {"Alice"},
		"last_name":  {"Liddell"},
	})
	expectRedirect(t, rec, "/profile/alice.l/")

	var stored models.User
	if err := app.db.First(&stored, alice.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.Username != "alice.l" || stored.LastName != "Liddell" {
		t.Fatalf("unexpected stored profile %+v", stored)
	}
	if stored.PasswordHash != alice.PasswordHash {
		t.Fatalf("expected password hash to be untouched")
	}
}

func TestCategoryPage(t *testing.T) {
	app := newTestApp(t)
	alice := dbtest.SeedUser(t, app.db, "alice")
	travel := dbtest.SeedCategory(t, app.db, "travel", true)
	food := dbtest.SeedCategory(t, app.db, "food", true)
	dbtest.SeedCategory(t, app.db, "hidden", false)

	dbtest.SeedPost(t, app.db, alice, travel, "Mountains")
	dbtest.SeedPost(t, app.db, alice, food, "Soup")

	rec := app.get("/category/travel/", nil)
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "Category travel", true)
	expectBody(t, rec, "Mountains", true)
	expectBody(t, rec, "Soup", false)

	expectStatus(t, app.get("/category/hidden/", nil), http.StatusNotFound)
	expectStatus(t, app.get("/category/missing/", nil), http.StatusNotFound)
}
