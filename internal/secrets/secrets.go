package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Resolved parameters for a warm instance. Not locked; a race costs at most
// a redundant SSM fetch.
var cache = map[string]string{}

// Resolve returns the env var's value, or, when <name>_PARAM names an SSM
// parameter, the decrypted parameter value. Returns "" when neither is set.
func Resolve(ctx context.Context, name string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}

	param := strings.TrimSpace(os.Getenv(name + "_PARAM"))
	if param == "" {
		return "", nil
	}
	if v, ok := cache[param]; ok {
		return v, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}

	out, err := ssm.NewFromConfig(cfg).GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(param),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm get %s: %w", param, err)
	}

	v := aws.ToString(out.Parameter.Value)
	cache[param] = v
	return v, nil
}
