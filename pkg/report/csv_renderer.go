package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/arrearly/arrearly/pkg/allocation"
	"github.com/arrearly/arrearly/pkg/money"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const reportDateFormat = "01/02/2006"

type CsvRenderer struct {
}

func NewCsvRenderer() *CsvRenderer {
	return &CsvRenderer{}
}

// RenderCombined renders the combined report stream as CSV with a header row
// and a trailing TOTALS line carrying the gross arrearage (total due minus
// total paid). One row per record, with the amount in the due or paid column
// according to its tag.
func (r *CsvRenderer) RenderCombined(records []Record) (string, error) {
	data := make([][]string, 0, len(records)+2)
	data = append(data, []string{"Date", "Description", "Amount Due", "Amount Paid", "Notes"})

	totalDue := decimal.Zero
	totalPaid := decimal.Zero
	for _, record := range records {
		row := []string{record.Date.Format(reportDateFormat), record.Description, "", "", record.Note}
		if record.Tag == TagDue {
			row[2] = money.FormatUSD(record.Amount)
			totalDue = totalDue.Add(record.Amount)
		} else {
			row[3] = money.FormatUSD(record.Amount)
			totalPaid = totalPaid.Add(record.Amount)
		}
		data = append(data, row)
	}

	data = append(data, []string{
		"",
		"TOTALS",
		money.FormatUSD(totalDue),
		money.FormatUSD(totalPaid),
		fmt.Sprintf("Arrearage: %s", money.FormatUSD(totalDue.Sub(totalPaid))),
	})

	return writeCsv(data)
}

// RenderEnforcement renders the per-due enforcement view: every due followed
// by the payment fragments applied to it and the balance each one left.
func (r *CsvRenderer) RenderEnforcement(annotated []allocation.AnnotatedDue) (string, error) {
	data := make([][]string, 0, len(annotated)+1)
	data = append(data, []string{"Date", "Description", "Amount Due", "Amount Applied", "Remaining"})

	for _, due := range annotated {
		data = append(data, []string{
			due.DueDate.Format(reportDateFormat),
			due.Description,
			money.FormatUSD(due.Amount),
			"",
			money.FormatUSD(due.Remaining),
		})
		for _, fragment := range due.Fragments {
			data = append(data, []string{
				fragment.Date.Format(reportDateFormat),
				"Payment applied",
				"",
				money.FormatUSD(fragment.Applied),
				money.FormatUSD(fragment.Leaves),
			})
		}
	}

	return writeCsv(data)
}

func writeCsv(data [][]string) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
