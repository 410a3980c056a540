package aws

import (
	"context"
	"encoding/json"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/pkg/errors"
)

// SecretGet reads a JSON credentials blob from Secrets Manager.
func (p *Provider) SecretGet(ctx context.Context, id string) (*structs.Credentials, error) {
	log := Logger.At("SecretGet").Namespace("secret=%q", id).Start()

	res, err := p.SecretsManager.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return nil, log.Error(errors.WithStack(err))
	}

	data := []byte(aws.StringValue(res.SecretString))

	if len(data) == 0 {
		data = res.SecretBinary
	}

	var c structs.Credentials

	if err := json.Unmarshal(data, &c); err != nil {
		return nil, log.Error(errors.Wrap(err, "secret is not a credentials document"))
	}

	log.Success()

	return &c, nil
}
