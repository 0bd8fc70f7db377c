package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var ErrMissingSecretKey = errors.New("SECRET_KEY or SECRET_KEY_PARAMETER must be set")

// ParameterGetter is the slice of the SSM client used to read the session secret.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecretKey returns the session signing secret. A plain SECRET_KEY wins;
// otherwise the value is read (decrypted) from the SSM parameter SECRET_KEY_PARAMETER.
func ResolveSecretKey(ctx context.Context, app App, client ParameterGetter) (string, error) {
	if app.SecretKey != "" {
		return app.SecretKey, nil
	}

	if app.SecretKeyParameter == "" || client == nil {
		return "", ErrMissingSecretKey
	}

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(app.SecretKeyParameter),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("read parameter %s: %w", app.SecretKeyParameter, err)
	}

	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("parameter %s is empty: %w", app.SecretKeyParameter, ErrMissingSecretKey)
	}

	return aws.ToString(out.Parameter.Value), nil
}
