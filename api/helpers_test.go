package api

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lonlait/blogicum/config"
	"github.com/lonlait/blogicum/database"
	"github.com/lonlait/blogicum/database/dbtest"
	"github.com/lonlait/blogicum/models"
	"github.com/lonlait/blogicum/services"
	"gorm.io/gorm"
)

type memoryMedia struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memoryMedia) Save(_ context.Context, originalName string, body io.Reader) (string, error) {
	key, _, err := services.NewImageKey("post_images", originalName)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return key, nil
}

func (m *memoryMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memoryMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type testApp struct {
	t        *testing.T
	db       *gorm.DB
	handler  http.Handler
	sessions *services.SessionManager
	media    *memoryMedia
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := dbtest.NewSQLite(t)
	sessions := services.NewSessionManager("test-secret", time.Hour, false)
	media := &memoryMedia{files: map[string][]byte{}}

	handler, err := newRouter(database.New(db),
		withConfig(config.App{PageSize: 10, MediaURL: "/media/", MaxUploadMB: 1}),
		withSessions(sessions),
		withMedia(media),
	)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	return &testApp{t: t, db: db, handler: handler, sessions: sessions, media: media}
}

func (a *testApp) serve(req *http.Request, user *models.User) *httptest.ResponseRecorder {
	a.t.Helper()

	if user != nil {
		token, err := a.sessions.Issue(user.ID)
		if err != nil {
			a.t.Fatalf("issue session: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: services.SessionCookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(target string, user *models.User) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, target, nil), user)
}

var csrfInput = regexp.MustCompile(`name="` + csrfFieldName + `" value="([^"]+)"`)

// csrfToken fetches the login page and returns the token cookie together with
// the masked token rendered into its form.
func (a *testApp) csrfToken() (*http.Cookie, string) {
	a.t.Helper()

	rec := a.get(loginURL, nil)
	expectStatus(a.t, rec, http.StatusOK)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		a.t.Fatalf("expected the login page to set the %s cookie", csrfCookieName)
	}

	match := csrfInput.FindStringSubmatch(rec.Body.String())
	if match == nil {
		a.t.Fatalf("expected the login form to carry a csrf field")
	}
	return cookie, html.UnescapeString(match[1])
}

func (a *testApp) post(target string, user *models.User, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()

	cookie, token := a.csrfToken()
	signed := url.Values{csrfFieldName: {token}}
	for key, values := range form {
		signed[key] = values
	}

	req := formRequest(target, signed)
	req.AddCookie(cookie)
	return a.serve(req, user)
}

// postUnsigned submits form without the csrf cookie or token.
func (a *testApp) postUnsigned(target string, user *models.User, form url.Values) *httptest.ResponseRecorder {
	return a.serve(formRequest(target, form), user)
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (a *testApp) postMultipart(target string, user *models.User, form url.Values, fileName string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()

	cookie, token := a.csrfToken()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField(csrfFieldName, token); err != nil {
		a.t.Fatalf("write csrf field: %v", err)
	}
	for key, values := range form {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				a.t.Fatalf("write field: %v", err)
			}
		}
	}
	part, err := writer.CreateFormFile("image", fileName)
	if err != nil {
		a.t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		a.t.Fatalf("write file part: %v", err)
	}
	if err := writer.Close(); err != nil {
		a.t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(cookie)
	return a.serve(req, user)
}

func postValues(title string, category models.Category, pubDate time.Time) url.Values {
	return url.Values{
		"title":        {title},
		"text":         {title + " body"},
		"pub_date":     {pubDate.UTC().Format(postDateLayout)},
		"category":     {fmt.Sprint(category.ID)},
		"is_published": {"on"},
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	expectStatus(t, rec, http.StatusFound)
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, fragment string, present bool) {
	t.Helper()
	if contains := strings.Contains(rec.Body.String(), fragment); contains != present {
		t.Fatalf("expected body contains %q to be %t", fragment, present)
	}
}
