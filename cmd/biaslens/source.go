package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"

	"BiasLens/database/postgres"
	analysisRepository "BiasLens/internal/api/analysis/repository"
	"BiasLens/internal/config"
	"BiasLens/internal/entity"
	"BiasLens/pkg/log"
)

var errNoSource = errors.New("either --analysis or --file is required")

// analysisSource resolves the payload a command works on: a JSON file on disk
// or an analysis row in Postgres.
type analysisSource struct {
	analysisID string
	file       string
}

func (s *analysisSource) load(ctx context.Context) (*entity.AnalysisResult, error) {
	switch {
	case s.file != "":
		return loadFile(s.file)
	case s.analysisID != "":
		return loadStored(ctx, s.analysisID)
	default:
		return nil, errNoSource
	}
}

func loadFile(path string) (*entity.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	var result entity.AnalysisResult
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", path, err)
	}
	return &result, nil
}

func loadStored(ctx context.Context, id string) (*entity.AnalysisResult, error) {
	_ = godotenv.Load()

	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	db, err := postgres.New(env.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	client, err := analysisRepository.New(db, log.NewLogger()).NewClient(false)
	if err != nil {
		return nil, err
	}

	stored, err := client.Analyses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load analysis %s: %w", id, err)
	}
	return &stored.Payload, nil
}
