package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docgate/docgate/internal/auth"
	"github.com/docgate/docgate/internal/model"
	"github.com/docgate/docgate/internal/repository"
)

type output struct {
	KeyID     string `json:"key_id"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	KeyPrefix string `json:"key_prefix"`
	Env       string `json:"env"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		name        = flag.String("name", "bootstrap", "Service key name")
		keyEnv      = flag.String("env", "live", "Key environment: live or test")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	env, err := parseEnv(*keyEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	generated, err := auth.GenerateServiceKey(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate service key:", err)
		os.Exit(1)
	}

	key := &model.ServiceKey{
		ID:        ulid.Make().String(),
		Name:      *name,
		KeyHash:   generated.Hash,
		KeyPrefix: generated.Prefix,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreateServiceKey(ctx, key); err != nil {
		fmt.Fprintln(os.Stderr, "create service key:", err)
		os.Exit(1)
	}

	out := output{
		KeyID:     key.ID,
		Name:      key.Name,
		Key:       generated.Plaintext,
		KeyPrefix: key.KeyPrefix,
		Env:       env,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func parseEnv(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "live":
		return auth.EnvLive, nil
	case "test":
		return auth.EnvTest, nil
	}
	return "", fmt.Errorf("invalid env: %s", input)
}
