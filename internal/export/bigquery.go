package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/valueinc-sales/internal/frame"
	"google.golang.org/api/googleapi"
)

// DefaultBatchSize is the number of rows sent per streaming insert.
const DefaultBatchSize = 500

// BigQuerySink streams the table into a BigQuery table, creating the table
// from the frame's column kinds when it does not exist yet.
type BigQuerySink struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	tableID   string
	batchSize int
	ownClient bool
}

// NewBigQuerySink creates a sink with its own client.
// Close releases the client.
func NewBigQuerySink(ctx context.Context, projectID, datasetID, tableID string) (*BigQuerySink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQuerySink: bigquery client: %w", err)
	}
	s := NewBigQuerySinkWithClient(client, projectID, datasetID, tableID)
	s.ownClient = true
	return s, nil
}

// NewBigQuerySinkWithClient creates a sink using the provided BigQuery client.
func NewBigQuerySinkWithClient(client *bigquery.Client, projectID, datasetID, tableID string) *BigQuerySink {
	return &BigQuerySink{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		tableID:   tableID,
		batchSize: DefaultBatchSize,
	}
}

func (s *BigQuerySink) Name() string { return "bigquery" }

// Close closes the client if the sink created it.
func (s *BigQuerySink) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

func (s *BigQuerySink) Write(ctx context.Context, runID string, f *frame.Frame) error {
	schema, err := Schema(f)
	if err != nil {
		return fmt.Errorf("BigQuerySink: %w", err)
	}
	rows, err := Rows(runID, f)
	if err != nil {
		return fmt.Errorf("BigQuerySink: %w", err)
	}

	table := s.client.DatasetInProject(s.projectID, s.datasetID).Table(s.tableID)
	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("BigQuerySink: create table %s.%s: %w", s.datasetID, s.tableID, err)
	}

	inserter := table.Inserter()
	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := inserter.Put(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("BigQuerySink: inserting rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// Schema maps the frame's column kinds to a BigQuery schema.
func Schema(f *frame.Frame) (bigquery.Schema, error) {
	colKinds, err := kinds(f)
	if err != nil {
		return nil, err
	}
	schema := make(bigquery.Schema, 0, len(colKinds))
	for j, name := range f.Columns() {
		schema = append(schema, &bigquery.FieldSchema{
			Name: name,
			Type: fieldType(colKinds[j]),
		})
	}
	return schema, nil
}

func fieldType(k frame.Kind) bigquery.FieldType {
	switch k {
	case frame.KindFloat32:
		return bigquery.FloatFieldType
	case frame.KindInt16:
		return bigquery.IntegerFieldType
	case frame.KindDate:
		return bigquery.DateFieldType
	default:
		return bigquery.StringFieldType
	}
}

// Row is one cleaned sales row ready for a streaming insert.
type Row struct {
	InsertID string
	Values   map[string]bigquery.Value
}

// Save implements bigquery.ValueSaver.
func (r *Row) Save() (map[string]bigquery.Value, string, error) {
	return r.Values, r.InsertID, nil
}

// Rows converts every frame row. Insert IDs are "<runID>-<row>", so BigQuery
// dedupes inserts retried within one run. A new run gets a new runID and
// appends its rows again.
func Rows(runID string, f *frame.Frame) ([]*Row, error) {
	cols := f.Columns()
	colKinds, err := kinds(f)
	if err != nil {
		return nil, err
	}

	rows := make([]*Row, f.Len())
	for i := range rows {
		values := make(map[string]bigquery.Value, len(cols))
		for j, name := range cols {
			v, err := bigQueryValue(colKinds[j], f.Value(i, name))
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, name, err)
			}
			values[name] = v
		}
		rows[i] = &Row{InsertID: runID + "-" + strconv.Itoa(i), Values: values}
	}
	return rows, nil
}

func bigQueryValue(k frame.Kind, v string) (bigquery.Value, error) {
	if k == frame.KindDate && v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("date value %q: %w", v, err)
		}
		return d, nil
	}
	return typedValue(k, v)
}

var _ bigquery.ValueSaver = (*Row)(nil)
