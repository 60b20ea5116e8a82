package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"explorer/internal/dataset"
	"explorer/internal/dbclient"
	"explorer/internal/domain"
)

// ── MongoDB Source ─────────────────────────────────────────
// Reads the dataset from a MongoDB collection with an optional filter.

type mongoSource struct{}

func init() { dataset.RegisterSource(&mongoSource{}) }

func (s *mongoSource) Spec() dataset.SourceSpec {
	return dataset.SourceSpec{
		Type:  "mongodb",
		Label: "MongoDB Collection",
		ConfigFields: []dataset.ConfigField{
			{Key: "uri", Label: "Connection URI", Type: "password", Required: true, Help: "mongodb:// or mongodb+srv:// URI"},
			{Key: "database", Label: "Database", Type: "string", Required: false, Help: "Defaults to the database in the URI"},
			{Key: "collection", Label: "Collection", Type: "string", Required: false, Help: "Required unless the query names one"},
			{Key: "filter", Label: "Filter", Type: "textarea", Required: false, Help: "Extended JSON filter document (e.g., {\"status\": \"OPEN\"})"},
			{Key: "query", Label: "Query", Type: "textarea", Required: false, Help: "Full query document: {\"operation\": \"aggregate\", \"pipeline\": [...]} or a find with filter/projection/sort"},
		},
	}
}

func (s *mongoSource) Fetch(ctx context.Context, cfg dataset.SourceConfig) ([]domain.RawRow, error) {
	const source = "mongodb"

	query, err := mongoQuery(cfg)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}

	conn, err := dbclient.NewConnector(dbclient.DriverMongoDB, cfg.String("uri"), cfg.String("database"), slog.Default())
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}
	defer conn.Close()

	if err := conn.TestConnection(ctx); err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", fmt.Errorf("connect: %w", err))
	}
	columns, values, err := dbclient.ReadAll(ctx, conn, query, fetchSize)
	if err != nil {
		return nil, domain.NewFetchError(source, "Failed to fetch dataset", err)
	}
	return dataset.RowsFromColumns(columns, values), nil
}

// mongoQuery builds the connector query document. A "query" document is
// used as is; "collection" and "filter" fill in what it leaves out.
func mongoQuery(cfg dataset.SourceConfig) (string, error) {
	var q dbclient.MongoQuery
	if raw := cfg.String("query"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return "", fmt.Errorf("parse query: %w", err)
		}
	}
	if q.Collection == "" {
		q.Collection = cfg.String("collection")
	}
	if q.Filter == nil {
		if filter := cfg.String("filter"); filter != "" {
			if err := json.Unmarshal([]byte(filter), &q.Filter); err != nil {
				return "", fmt.Errorf("parse filter: %w", err)
			}
		}
	}

	b, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	if _, err := dbclient.ParseMongoQuery(string(b)); err != nil {
		return "", err
	}
	return string(b), nil
}
