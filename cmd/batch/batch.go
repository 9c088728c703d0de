// Package batch handles CSV batch classification
package batch

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/finsift/finsift/cmd/root"
	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/logging"
	"github.com/finsift/finsift/internal/models"
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify a CSV of transaction descriptions",
	Long: `Classify every row of a CSV file with description and amount columns,
writing a CSV with the assigned category, confidence, and method appended.

Example:
  finsift batch -i transactions.csv -o classified.csv`,
	Run: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Input, "input", "i", "", "Input CSV file")
	Cmd.Flags().StringVarP(&root.Output, "output", "o", "", "Output CSV file")
	for _, flag := range []string{"input", "output"} {
		if err := Cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
}

// inputRow is one line of the input CSV.
type inputRow struct {
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
}

// outputRow is one line of the classified output CSV.
type outputRow struct {
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category"`
	Confidence  string `csv:"confidence"`
	Method      string `csv:"method"`
	MatchedTerm string `csv:"matched_term"`
}

func batchFunc(cmd *cobra.Command, args []string) {
	cat, err := catalog.Load(root.CatalogFile())
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load category catalog")
	}
	engine := classify.NewEngine(catalog.NewHolder(cat), root.Cfg.ClassifyConfig(), root.Log)

	rows, err := readRows(root.Input)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to read input CSV")
	}

	out := make([]outputRow, 0, len(rows))
	for _, row := range rows {
		var amount *float64
		if row.Amount != "" {
			dec, err := models.ParseAmount(row.Amount)
			if err != nil {
				root.Log.WithError(err).WithField("description", row.Description).
					Warn("Unparseable amount, classifying without it")
			} else {
				amount = models.AmountPtr(dec)
			}
		}

		result := engine.Classify(row.Description, amount)
		out = append(out, outputRow{
			Description: row.Description,
			Amount:      row.Amount,
			Category:    string(result.Category),
			Confidence:  fmt.Sprintf("%.2f", result.Confidence),
			Method:      string(result.Method),
			MatchedTerm: result.MatchedTerm,
		})
	}

	if err := writeRows(root.Output, out); err != nil {
		root.Log.WithError(err).Fatal("Failed to write output CSV")
	}

	root.Log.WithFields(
		logging.Field{Key: logging.FieldCount, Value: len(out)},
		logging.Field{Key: logging.FieldPath, Value: root.Output},
	).Info("Batch classification complete")
}

func readRows(path string) ([]inputRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []inputRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func writeRows(path string, rows []outputRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}
