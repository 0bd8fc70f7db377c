package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lonlait/blogicum/models"
)

const (
	postDateLayout = "2006-01-02T15:04"
	formErrorKey   = "__all__"
)

var postDateLayouts = []string{
	postDateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := field.Tag.Get("form")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

func (e FieldErrors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e FieldErrors) Get(field string) string {
	return e[field]
}

func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// validateForm runs the struct tags of form and converts failures to field messages.
func validateForm(form any) FieldErrors {
	fieldErrors := FieldErrors{}

	var validationErrors validator.ValidationErrors
	if err := validate.Struct(form); errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			fieldErrors.Add(fe.Field(), validationMessage(fe))
		}
	}

	return fieldErrors
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return "Enter a valid value."
}

// parseForm accepts both multipart and urlencoded bodies.
func parseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

func formBool(r *http.Request, name string) bool {
	switch strings.ToLower(r.PostFormValue(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

type postForm struct {
	Title       string `form:"title" validate:"required,max=256"`
	Text        string `form:"text" validate:"required"`
	PubDate     string `form:"pub_date" validate:"required"`
	Category    string `form:"category" validate:"required"`
	Location    string `form:"location"`
	IsPublished bool   `form:"is_published"`
	ClearImage  bool   `form:"image-clear"`
}

func postFormFromRequest(r *http.Request) postForm {
	return postForm{
		Title:       formValue(r, "title"),
		Text:        formValue(r, "text"),
		PubDate:     formValue(r, "pub_date"),
		Category:    formValue(r, "category"),
		Location:    formValue(r, "location"),
		IsPublished: formBool(r, "is_published"),
		ClearImage:  formBool(r, "image-clear"),
	}
}

func postFormFromPost(post models.Post) postForm {
	form := postForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate.UTC().Format(postDateLayout),
		IsPublished: post.IsPublished,
	}
	if post.CategoryID != nil {
		form.Category = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		form.Location = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return form
}

func newPostForm(now time.Time) postForm {
	return postForm{
		PubDate:     now.UTC().Format(postDateLayout),
		IsPublished: true,
	}
}

// parsePubDate reads the datetime-local value as UTC.
func parsePubDate(raw string) (time.Time, bool) {
	for _, layout := range postDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseChoice(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

type commentForm struct {
	Text string `form:"text" validate:"required,max=256"`
}

func commentFormFromRequest(r *http.Request) commentForm {
	return commentForm{Text: formValue(r, "text")}
}

type profileForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
}

func profileFormFromRequest(r *http.Request) profileForm {
	return profileForm{
		Username:  formValue(r, "username"),
		Email:     formValue(r, "email"),
		FirstName: formValue(r, "first_name"),
		LastName:  formValue(r, "last_name"),
	}
}

func profileFormFromUser(user models.User) profileForm {
	return profileForm{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

type registrationForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// passwords are not trimmed
func registrationFormFromRequest(r *http.Request) registrationForm {
	return registrationForm{
		Username:  formValue(r, "username"),
		Email:     formValue(r, "email"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func loginFormFromRequest(r *http.Request) loginForm {
	return loginForm{
		Username: formValue(r, "username"),
		Password: r.PostFormValue("password"),
	}
}

// safeNext keeps only local redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
