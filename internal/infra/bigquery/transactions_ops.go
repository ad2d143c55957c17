package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// insertBatchSize bounds the rows sent in one streaming insert request.
const insertBatchSize = 500

// Inserter streams rows into a table. *bigquery.Inserter satisfies it.
type Inserter interface {
	Put(ctx context.Context, src interface{}) error
}

// Exporter streams app transactions into a BigQuery table.
type Exporter struct {
	client   *bigquery.Client
	table    *bigquery.Table
	inserter Inserter
	currency string
	now      func() time.Time
	log      zerolog.Logger
}

// NewExporter creates an exporter writing to project.dataset.table.
func NewExporter(ctx context.Context, projectID, datasetID, tableID string, log zerolog.Logger, opts ...option.ClientOption) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: creating client: %w", err)
	}
	table := client.DatasetInProject(projectID, datasetID).Table(tableID)
	return &Exporter{
		client:   client,
		table:    table,
		inserter: table.Inserter(),
		currency: "USD",
		now:      time.Now,
		log:      log,
	}, nil
}

// NewExporterWithInserter creates an exporter around an existing inserter.
func NewExporterWithInserter(ins Inserter, log zerolog.Logger) *Exporter {
	return &Exporter{inserter: ins, currency: "USD", now: time.Now, log: log}
}

// Close closes the BigQuery client connection.
func (e *Exporter) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// EnsureTable creates the export table, partitioned by transaction date, if
// it does not exist yet.
func (e *Exporter) EnsureTable(ctx context.Context) error {
	if e.table == nil {
		return nil
	}
	_, err := e.table.Metadata(ctx)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return fmt.Errorf("EnsureTable: reading metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(TransactionRow{})
	if err != nil {
		return fmt.Errorf("EnsureTable: inferring schema: %w", err)
	}
	meta := &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "transaction_date",
		},
	}
	if err := e.table.Create(ctx, meta); err != nil {
		return fmt.Errorf("EnsureTable: creating table: %w", err)
	}
	e.log.Info().Str("table", e.table.FullyQualifiedName()).Msg("Created BigQuery table")
	return nil
}

// ExportTransactions streams txs in batches, using each transaction id as the
// insert id so re-exports are deduplicated. It returns the number of rows sent.
func (e *Exporter) ExportTransactions(ctx context.Context, txs []domain.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	exportedAt := e.now()
	sent := 0
	for start := 0; start < len(txs); start += insertBatchSize {
		end := min(start+insertBatchSize, len(txs))

		savers := make([]*bigquery.StructSaver, 0, end-start)
		for _, tx := range txs[start:end] {
			savers = append(savers, &bigquery.StructSaver{
				Struct:   ToRow(tx, e.currency, exportedAt),
				InsertID: tx.ID,
			})
		}

		if err := e.inserter.Put(ctx, savers); err != nil {
			return sent, fmt.Errorf("ExportTransactions: inserting rows %d-%d: %w", start, end, err)
		}
		sent += len(savers)
		e.log.Debug().Int("rows", len(savers)).Int("sent", sent).Msg("Exported transaction batch")
	}

	e.log.Info().Int("rows", sent).Msg("Exported transactions to BigQuery")
	return sent, nil
}

// CategoryTotal is the exported spend of one category.
type CategoryTotal struct {
	Category string  `bigquery:"category_name"`
	Total    float64 `bigquery:"total"`
	Count    int64   `bigquery:"tx_count"`
}

// SpendingByCategory sums exported debits per category within [start, end].
func (e *Exporter) SpendingByCategory(ctx context.Context, start, end time.Time) ([]CategoryTotal, error) {
	if e.client == nil || e.table == nil {
		return nil, errors.New("SpendingByCategory: exporter has no client")
	}

	q := e.client.Query(`
		SELECT
			IFNULL(category_name, 'Uncategorized') AS category_name,
			CAST(SUM(abs_amount) AS FLOAT64) AS total,
			COUNT(*) AS tx_count
		FROM ` + tableRef(e.table) + `
		WHERE direction = 'DEBIT'
		  AND transaction_date >= @start_date
		  AND transaction_date <= @end_date
		GROUP BY category_name
		ORDER BY total DESC
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: civil.DateOf(start)},
		{Name: "end_date", Value: civil.DateOf(end)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("SpendingByCategory: query read: %w", err)
	}

	var totals []CategoryTotal
	for {
		var r CategoryTotal
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("SpendingByCategory: iter next: %w", err)
		}
		totals = append(totals, r)
	}
	return totals, nil
}

func tableRef(t *bigquery.Table) string {
	return fmt.Sprintf("`%s.%s.%s`", t.ProjectID, t.DatasetID, t.TableID)
}
