package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/elasticom/elasticom-backend/pkg/logger"

	transactionsvc "github.com/elasticom/elasticom-backend/internal/transactions"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "import"})
	ctx := context.Background()

	apiURL := flag.String("url", "http://localhost:8000", "base API URL")
	batchSize := flag.Int("batch-size", 1000, "transactions per batch request")
	limit := flag.Int("limit", 0, "maximum rows to import (0 imports all)")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: import [flags] <csv-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	raw, err := os.ReadFile(path)
	if err != nil {
		logg.Error(ctx, "failed to read csv file", err)
		os.Exit(1)
	}

	transactions, skipped, err := readTransactions(raw, *limit)
	if err != nil {
		logg.Error(ctx, "failed to parse csv", err)
		os.Exit(1)
	}
	for _, skip := range skipped {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"line":  skip.Line,
			"error": skip.Err.Error(),
		}), "skipping unparseable row")
	}
	if len(transactions) == 0 {
		logg.Error(ctx, "no valid transactions found in csv", nil)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"file":       path,
		"rows":       len(transactions),
		"batch_size": *batchSize,
		"url":        *apiURL,
	})
	logg.Info(ctx, "starting import")

	client := &http.Client{Timeout: *timeout}
	totalCreated := 0
	for start := 0; start < len(transactions); start += *batchSize {
		end := start + *batchSize
		if end > len(transactions) {
			end = len(transactions)
		}
		created, err := sendBatch(client, *apiURL, transactions[start:end])
		if err != nil {
			logg.Error(ctx, "batch import failed", err)
			os.Exit(1)
		}
		totalCreated += created
	}

	logg.Info(logg.WithField(ctx, "created", totalCreated), "import complete")
}

func sendBatch(client *http.Client, apiURL string, batch []transactionsvc.CreateRequest) (int, error) {
	payload, err := json.Marshal(transactionsvc.BatchCreateRequest{Transactions: batch})
	if err != nil {
		return 0, fmt.Errorf("marshaling batch: %w", err)
	}

	resp, err := client.Post(apiURL+"/transactions/batch", "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("posting batch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading batch response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("batch rejected with status %d: %s", resp.StatusCode, body)
	}

	var envelope struct {
		Data transactionsvc.BatchCreateResponse `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("decoding batch response: %w", err)
	}
	return envelope.Data.Created, nil
}
