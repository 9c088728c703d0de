// Package classify handles one-shot classification from the command line
package classify

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/cmd/root"
	"github.com/finsift/finsift/internal/catalog"
	engine "github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/models"
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single transaction description",
	Long: `Classify a transaction description into a spending category using the
configured rule catalog.

Example:
  finsift classify --text "Starbucks Coffee" --amount 4.85`,
	Run: classifyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Text, "text", "t", "", "Transaction description to classify")
	Cmd.Flags().StringVarP(&root.Amount, "amount", "a", "", "Transaction amount (optional)")
	if err := Cmd.MarkFlagRequired("text"); err != nil {
		panic(err)
	}
}

func classifyFunc(cmd *cobra.Command, args []string) {
	cat, err := catalog.Load(root.CatalogFile())
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load category catalog")
	}

	var amount *float64
	if root.Amount != "" {
		dec, err := models.ParseAmount(root.Amount)
		if err != nil {
			root.Log.WithError(err).Fatal("Invalid amount")
		}
		amount = models.AmountPtr(dec)
	}

	eng := engine.NewEngine(catalog.NewHolder(cat), root.Cfg.ClassifyConfig(), root.Log)
	result := eng.Classify(root.Text, amount)

	fmt.Printf("Category:   %s\n", result.Category)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	fmt.Printf("Method:     %s\n", result.Method)
	if result.MatchedTerm != "" {
		fmt.Printf("Matched:    %s\n", result.MatchedTerm)
	}
}
