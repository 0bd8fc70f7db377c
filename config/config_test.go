package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

func TestGettersFallBackToDefaults(t *testing.T) {
	c := map[string]string{
		"PORT":            " 9000 ",
		"BROKEN_INT":      "ten",
		"FLAG":            "true",
		"ORIGINS":         "https://a.test, ,https://b.test",
		"EMPTY_STRING":    "  ",
		"READ_TIMEOUT_NO": "",
	}

	if got := GetString(c, "PORT", "8080"); got != "9000" {
		t.Fatalf("expected trimmed port, got %q", got)
	}
	if got := GetString(c, "EMPTY_STRING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
	if got := GetInt(c, "BROKEN_INT", 7); got != 7 {
		t.Fatalf("expected default for unparsable int, got %d", got)
	}
	if !GetBool(c, "FLAG", false) {
		t.Fatalf("expected FLAG to parse as true")
	}
	if got := GetList(c, "ORIGINS"); len(got) != 2 || got[1] != "https://b.test" {
		t.Fatalf("unexpected list: %v", got)
	}
	if got := GetString(nil, "PORT", "8080"); got != "8080" {
		t.Fatalf("expected default on nil config, got %q", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	app := Load(map[string]string{"PAGINATOR_VALUE": "0"})

	if app.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", app.PageSize)
	}
	if app.DBType != DBTypeSQLite {
		t.Fatalf("expected sqlite default, got %s", app.DBType)
	}
	if app.SessionTTL != 14*24*time.Hour {
		t.Fatalf("unexpected session ttl %s", app.SessionTTL)
	}
	if app.DatabaseURL != "" {
		t.Fatalf("expected empty database url, got %q", app.DatabaseURL)
	}
}

func TestLoadBuildsPostgresDSN(t *testing.T) {
	app := Load(map[string]string{
		"DB_TYPE":     "postgres",
		"DB_HOST":     "db",
		"DB_USER":     "blog",
		"DB_PASSWORD": "secret",
	})

	want := "host=db user=blog password=secret dbname=blogicum port=5432 sslmode=disable TimeZone=UTC"
	if app.DatabaseURL != want {
		t.Fatalf("unexpected dsn %q", app.DatabaseURL)
	}
}

type fakeParameters struct {
	value string
	err   error
	asked string
}

func (f *fakeParameters) GetParameter(_ context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.asked = aws.ToString(params.Name)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(f.value)}}, nil
}

func TestResolveSecretKey(t *testing.T) {
	ctx := context.Background()

	got, err := ResolveSecretKey(ctx, App{SecretKey: "plain"}, nil)
	if err != nil || got != "plain" {
		t.Fatalf("expected plain secret, got %q (%v)", got, err)
	}

	params := &fakeParameters{value: "from-ssm"}
	got, err = ResolveSecretKey(ctx, App{SecretKeyParameter: "/blogicum/secret"}, params)
	if err != nil || got != "from-ssm" {
		t.Fatalf("expected ssm secret, got %q (%v)", got, err)
	}
	if params.asked != "/blogicum/secret" {
		t.Fatalf("unexpected parameter name %q", params.asked)
	}

	if _, err := ResolveSecretKey(ctx, App{}, nil); !errors.Is(err, ErrMissingSecretKey) {
		t.Fatalf("expected missing secret error, got %v", err)
	}

	failing := &fakeParameters{err: errors.New("boom")}
	if _, err := ResolveSecretKey(ctx, App{SecretKeyParameter: "/x"}, failing); err == nil {
		t.Fatalf("expected ssm failure to surface")
	}
}
