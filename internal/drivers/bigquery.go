package drivers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/quantfold/studio/internal/models"
)

// TypeBigQuery is the connection type served by Google BigQuery.
const TypeBigQuery = "bigquery"

// OpenBigQuery opens a BigQuery client for the descriptor. Credentials come
// from the descriptor's extra metadata ("user_or_service_auth_json") when
// present, otherwise from application default credentials. The project is
// taken from extra ("project"), then from the credential JSON, then detected
// from the environment.
func OpenBigQuery(ctx context.Context, conn models.Connection) (Executor, error) {
	project, opts := bigqueryClientConfig(conn)

	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		if project == bigquery.DetectProjectID {
			return nil, fmt.Errorf("%w: %v", ErrProjectRequired, err)
		}
		return nil, fmt.Errorf("bigquery: open client: %w", err)
	}

	return &bigqueryExecutor{client: client}, nil
}

func bigqueryClientConfig(conn models.Connection) (string, []option.ClientOption) {
	var opts []option.ClientOption

	authJSON, _ := conn.Extra["user_or_service_auth_json"].(string)
	if authJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(authJSON)))
	}

	if project, ok := conn.Extra["project"].(string); ok && strings.TrimSpace(project) != "" {
		return strings.TrimSpace(project), opts
	}

	if project := projectFromCredentialJSON(authJSON); project != "" {
		return project, opts
	}

	return bigquery.DetectProjectID, opts
}

func projectFromCredentialJSON(authJSON string) string {
	if authJSON == "" {
		return ""
	}

	var creds struct {
		ProjectID      string `json:"project_id"`
		QuotaProjectID string `json:"quota_project_id"`
	}
	if err := json.Unmarshal([]byte(authJSON), &creds); err != nil {
		return ""
	}
	if creds.ProjectID != "" {
		return creds.ProjectID
	}
	return creds.QuotaProjectID
}

type bigqueryExecutor struct {
	client *bigquery.Client
}

func (e *bigqueryExecutor) Execute(ctx context.Context, statement string) (*Result, error) {
	it, err := e.client.Query(statement).Read(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		if result.Columns == nil {
			result.Columns = schemaColumns(it.Schema)
		}

		row := make(map[string]any, len(result.Columns))
		for i, col := range result.Columns {
			if i < len(values) {
				row[col.Name] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if result.Columns == nil {
		result.Columns = schemaColumns(it.Schema)
	}

	return result, nil
}

func (e *bigqueryExecutor) Close() error {
	return e.client.Close()
}

func schemaColumns(schema bigquery.Schema) []Column {
	columns := make([]Column, 0, len(schema))
	for _, field := range schema {
		columns = append(columns, Column{
			Name:     field.Name,
			TypeName: strings.ToUpper(string(field.Type)),
		})
	}
	return columns
}
