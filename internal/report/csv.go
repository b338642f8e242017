package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pos-terminal-service/internal/domain"
)

// transactionCSVHeader is the fixed export column order.
var transactionCSVHeader = []string{
	"Transaction ID", "Date", "Cashier", "Items",
	"Subtotal", "Tax", "Total", "Payment Method", "Status",
}

// WriteTransactionsCSV writes the transaction history as CSV, one row per
// transaction. Items is the total quantity across line items; money columns
// are formatted to two decimal places.
func WriteTransactionsCSV(w io.Writer, transactions []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(transactionCSVHeader); err != nil {
		return fmt.Errorf("report: write csv header: %w", err)
	}
	for _, tx := range transactions {
		row := []string{
			tx.ID,
			tx.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			tx.CashierName,
			strconv.Itoa(tx.TotalQuantity()),
			tx.Subtotal.StringFixed(2),
			tx.Tax.StringFixed(2),
			tx.Total.StringFixed(2),
			string(tx.PaymentMethod),
			string(tx.Status),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
