package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quantfold/studio/internal/drivers"
	apperrors "github.com/quantfold/studio/pkg/errors"
	"github.com/quantfold/studio/pkg/logger"
	"github.com/quantfold/studio/pkg/metrics"
)

// DefaultStatementLimit caps rows returned by the studio query path.
const DefaultStatementLimit = 100

// DataType classifies a result column for the UI.
type DataType string

const (
	DataTypeString    DataType = "string"
	DataTypeInteger   DataType = "int"
	DataTypeFloat     DataType = "float"
	DataTypeBool      DataType = "bool"
	DataTypeDate      DataType = "date"
	DataTypeTimestamp DataType = "timestamp"
	DataTypeUnknown   DataType = "unknown"
)

// Purpose describes a column's role in the result set.
type Purpose string

const (
	PurposeKey      Purpose = "key"
	PurposeProperty Purpose = "property"
)

// QueryInput names a connection and the statement to run on it.
type QueryInput struct {
	Connection string
	Query      string
}

// QueryOutColumn carries per-column metadata.
type QueryOutColumn struct {
	Name     string   `json:"name"`
	Datatype DataType `json:"datatype"`
	Purpose  Purpose  `json:"purpose"`
}

// QueryOut is the response shape for both query paths.
type QueryOut struct {
	Connection   string           `json:"connection"`
	Query        string           `json:"query"`
	GeneratedSQL string           `json:"generated_sql"`
	Headers      []string         `json:"headers"`
	Results      []map[string]any `json:"results"`
	CreatedAt    time.Time        `json:"created_at"`
	RefreshedAt  time.Time        `json:"refreshed_at"`
	Duration     int64            `json:"duration"`
	Columns      []QueryOutColumn `json:"columns"`
}

// QueryService executes statements against live connections.
type QueryService struct {
	conns          *ConnectionService
	statementLimit int
	log            *zap.Logger
	now            func() time.Time
}

// NewQueryService constructs a QueryService. A non-positive limit falls back
// to DefaultStatementLimit.
func NewQueryService(conns *ConnectionService, statementLimit int) (*QueryService, error) {
	if conns == nil {
		return nil, errors.New("query service: connection service is required")
	}
	if statementLimit <= 0 {
		statementLimit = DefaultStatementLimit
	}

	return &QueryService{
		conns:          conns,
		statementLimit: statementLimit,
		log:            logger.WithModule("queries"),
		now:            time.Now,
	}, nil
}

// Run executes a studio query: the statement is normalised, capped to the
// statement limit, and column metadata is derived from the driver's reported
// types. A connection without a live executor must be refreshed first.
func (s *QueryService) Run(ctx context.Context, input QueryInput) (*QueryOut, error) {
	exec, ok := s.conns.Executor(input.Connection)
	if !ok {
		return nil, apperrors.ErrStaleConnection
	}

	statement, err := formatStatement(input.Query)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("query", "error").Inc()
		return nil, apperrors.NewUnprocessable("Parsing error: " + err.Error())
	}

	start := s.now()
	result, err := exec.Execute(ctx, statement)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("query", "error").Inc()
		s.log.Warn("query failed", zap.String("connection", input.Connection), zap.Error(err))
		return nil, apperrors.NewExecutionFailure(err)
	}
	metrics.QueriesTotal.WithLabelValues("query", "ok").Inc()

	if len(result.Rows) > s.statementLimit {
		result.Rows = result.Rows[:s.statementLimit]
	}

	columns := make([]QueryOutColumn, 0, len(result.Columns))
	for _, col := range result.Columns {
		columns = append(columns, QueryOutColumn{
			Name:     col.Name,
			Datatype: dataTypeFromDriver(col.TypeName),
			Purpose:  PurposeProperty,
		})
	}

	return s.shapeOutput(input, statement, result, columns, start), nil
}

// RunRaw executes a statement verbatim. Column metadata is not inspected:
// every column is reported as a string key, mirroring the UI's expectations
// for ad-hoc SQL.
func (s *QueryService) RunRaw(ctx context.Context, input QueryInput) (*QueryOut, error) {
	exec, ok := s.conns.Executor(input.Connection)
	if !ok {
		return nil, apperrors.ErrUnknownConnection
	}

	start := s.now()
	result, err := exec.Execute(ctx, input.Query)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("raw_query", "error").Inc()
		s.log.Warn("raw query failed", zap.String("connection", input.Connection), zap.Error(err))
		return nil, apperrors.NewExecutionFailure(err)
	}
	metrics.QueriesTotal.WithLabelValues("raw_query", "ok").Inc()

	columns := make([]QueryOutColumn, 0, len(result.Columns))
	for _, col := range result.Columns {
		columns = append(columns, QueryOutColumn{
			Name:     col.Name,
			Datatype: DataTypeString,
			Purpose:  PurposeKey,
		})
	}

	return s.shapeOutput(input, input.Query, result, columns, start), nil
}

func (s *QueryService) shapeOutput(input QueryInput, generated string, result *drivers.Result, columns []QueryOutColumn, start time.Time) *QueryOut {
	headers := make([]string, 0, len(result.Columns))
	for _, col := range result.Columns {
		headers = append(headers, col.Name)
	}

	rows := make([]map[string]any, 0, len(result.Rows))
	for idx, row := range result.Rows {
		shaped := make(map[string]any, len(row)+1)
		shaped["_index"] = idx
		for key, value := range row {
			shaped[key] = value
		}
		rows = append(rows, shaped)
	}

	finished := s.now()
	return &QueryOut{
		Connection:   input.Connection,
		Query:        input.Query,
		GeneratedSQL: generated,
		Headers:      headers,
		Results:      rows,
		CreatedAt:    finished,
		RefreshedAt:  finished,
		Duration:     finished.Sub(start).Milliseconds(),
		Columns:      columns,
	}
}

// formatStatement trims the statement and guarantees a terminal semicolon.
// An empty statement is a parse error.
func formatStatement(statement string) (string, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return "", errors.New("empty statement")
	}
	if !strings.HasSuffix(statement, ";") {
		statement += ";"
	}
	return statement, nil
}

// dataTypeFromDriver maps a driver-reported column type onto the UI's
// datatype vocabulary.
func dataTypeFromDriver(typeName string) DataType {
	switch {
	case typeName == "":
		return DataTypeUnknown
	case strings.Contains(typeName, "VARCHAR"), strings.Contains(typeName, "TEXT"), strings.Contains(typeName, "STRING"), strings.Contains(typeName, "CHAR"):
		return DataTypeString
	case strings.Contains(typeName, "INT"):
		return DataTypeInteger
	case strings.Contains(typeName, "DOUBLE"), strings.Contains(typeName, "FLOAT"), strings.Contains(typeName, "DECIMAL"), strings.Contains(typeName, "NUMERIC"):
		return DataTypeFloat
	case strings.Contains(typeName, "BOOL"):
		return DataTypeBool
	case strings.Contains(typeName, "TIMESTAMP"), strings.Contains(typeName, "DATETIME"):
		return DataTypeTimestamp
	case strings.Contains(typeName, "DATE"):
		return DataTypeDate
	default:
		return DataTypeUnknown
	}
}
