package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ShopifyAPISecret resolves the app's client secret, used for webhook HMAC
// and checkout session-token verification. Prefers the env var so local dev
// works without AWS creds; otherwise reads the SSM parameter named by
// SHOPIFY_API_SECRET_PARAM.
func ShopifyAPISecret(ctx context.Context) (string, error) {
	if s := strings.TrimSpace(os.Getenv("SHOPIFY_API_SECRET")); s != "" {
		return s, nil
	}

	param := strings.TrimSpace(os.Getenv("SHOPIFY_API_SECRET_PARAM"))
	if param == "" {
		return "", errors.New("neither SHOPIFY_API_SECRET nor SHOPIFY_API_SECRET_PARAM is set")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}
	return fetchSecretParameter(ctx, ssm.NewFromConfig(cfg), param)
}

func fetchSecretParameter(ctx context.Context, client SSMClient, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if out.Parameter == nil || out.Parameter.Value == nil || strings.TrimSpace(*out.Parameter.Value) == "" {
		return "", errors.New("ssm parameter " + name + " is empty")
	}
	return *out.Parameter.Value, nil
}
