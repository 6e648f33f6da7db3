package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// LoadDatabaseSecret overwrites connection fields with the ones stored in an
// AWS Secrets Manager secret (RDS layout: host, port, username, password,
// dbname).
func LoadDatabaseSecret(ctx context.Context, db *DatabaseConfig, secretArn string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretArn,
	})
	if err != nil {
		return fmt.Errorf("get secret value: %w", err)
	}
	if result.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", secretArn)
	}

	return applyDatabaseSecret(db, []byte(*result.SecretString))
}

func applyDatabaseSecret(db *DatabaseConfig, raw []byte) error {
	var creds map[string]interface{}
	if err := json.Unmarshal(raw, &creds); err != nil {
		return fmt.Errorf("decode database secret: %w", err)
	}

	str := func(key string) string {
		switch v := creds[key].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return ""
		}
	}

	if v := str("host"); v != "" {
		db.Host = v
	}
	if v := str("port"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("database secret port %q: %w", v, err)
		}
		db.Port = port
	}
	if v := str("username"); v != "" {
		db.User = v
	}
	if v := str("password"); v != "" {
		db.Password = v
	}
	if v := str("dbname"); v != "" {
		db.DBName = v
	}
	if v := str("engine"); v == "mysql" || v == "postgres" {
		db.Driver = v
	}
	// a URL would shadow the fields above
	db.URL = ""
	return nil
}
