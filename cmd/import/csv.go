package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	transactionsvc "github.com/elasticom/elasticom-backend/internal/transactions"
)

// CSV exports carry dates as "M/D/YYYY H:MM"; some regional exports flip
// the day and month.
var dateLayouts = []string{"1/2/2006 15:04", "2/1/2006 15:04"}

var minPrice = decimal.NewFromFloat(0.01)

func parseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, trimmed)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unparseable invoice date %q: %w", raw, lastErr)
}

// normalizePrice rounds to 2 decimal places, converts negatives to their
// absolute value and floors nonzero prices at 0.01.
func normalizePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable unit price %q: %w", raw, err)
	}
	price = price.Abs().Round(2)
	if price.IsPositive() && price.LessThan(minPrice) {
		price = minPrice
	}
	return price, nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func rowToTransaction(row map[string]string) (transactionsvc.CreateRequest, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(row["Quantity"]))
	if err != nil {
		return transactionsvc.CreateRequest{}, fmt.Errorf("unparseable quantity %q: %w", row["Quantity"], err)
	}
	invoiceDate, err := parseDate(row["InvoiceDate"])
	if err != nil {
		return transactionsvc.CreateRequest{}, err
	}
	unitPrice, err := normalizePrice(row["UnitPrice"])
	if err != nil {
		return transactionsvc.CreateRequest{}, err
	}

	return transactionsvc.CreateRequest{
		InvoiceNo:   truncate(row["InvoiceNo"], 20),
		StockCode:   truncate(row["StockCode"], 20),
		Description: truncate(row["Description"], 256),
		Quantity:    quantity,
		InvoiceDate: invoiceDate,
		UnitPrice:   unitPrice,
		CustomerID:  truncate(row["CustomerID"], 20),
		Country:     truncate(row["Country"], 64),
	}, nil
}

// decodeContent assumes UTF-8 and falls back to Latin-1, which covers the
// cp1252-style exports the retail datasets ship in.
func decodeContent(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	out := make([]rune, 0, len(raw))
	for _, b := range raw {
		out = append(out, rune(b))
	}
	return string(out)
}

type skippedRow struct {
	Line int
	Err  error
}

// readTransactions parses CSV content into create requests. Rows that fail
// to parse are reported and skipped rather than aborting the import.
func readTransactions(raw []byte, limit int) ([]transactionsvc.CreateRequest, []skippedRow, error) {
	reader := csv.NewReader(strings.NewReader(decodeContent(raw)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var (
		transactions []transactionsvc.CreateRequest
		skipped      []skippedRow
	)
	line := 1
	for {
		if limit > 0 && len(transactions) >= limit {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skipped = append(skipped, skippedRow{Line: line, Err: err})
			continue
		}

		row := make(map[string]string, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = field
			}
		}
		tx, err := rowToTransaction(row)
		if err != nil {
			skipped = append(skipped, skippedRow{Line: line, Err: err})
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, skipped, nil
}
