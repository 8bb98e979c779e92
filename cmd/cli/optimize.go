package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/handlekurv/deal-service/internal/catalog"
	"github.com/handlekurv/deal-service/internal/database"
	"github.com/handlekurv/deal-service/internal/planner"
)

var (
	optimizeRegion      string
	optimizeLat         float64
	optimizeLon         float64
	optimizeDays        int
	optimizeMaxDistance float64
	optimizeSavings     bool
	optimizeStores      bool
	optimizeOrganic     bool
	optimizeOutput      string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <ingredient>...",
	Short: "Compute an optimized shopping plan",
	Long: `Compute an optimized shopping plan for a list of ingredients against the
current discount catalog of a region. Each ingredient is matched against
discounted products and the best candidate is picked per the active
preferences.`,
	Example: `  deal-service optimize melk brød egg --region oslo --lat 59.913 --lon 10.752
  deal-service optimize tortillas kylling --region oslo --lat 59.913 --lon 10.752 --prefer-organic --minimize-stores`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&optimizeRegion, "region", "", "Catalog region (required)")
	optimizeCmd.Flags().Float64Var(&optimizeLat, "lat", 0, "User latitude (required)")
	optimizeCmd.Flags().Float64Var(&optimizeLon, "lon", 0, "User longitude (required)")
	optimizeCmd.Flags().IntVar(&optimizeDays, "days", 7, "Shopping window length in days, starting today")
	optimizeCmd.Flags().Float64Var(&optimizeMaxDistance, "max-distance", 0, "Maximum store distance in km (0 = config default)")
	optimizeCmd.Flags().BoolVar(&optimizeSavings, "maximize-savings", false, "Prefer the largest discounts")
	optimizeCmd.Flags().BoolVar(&optimizeStores, "minimize-stores", false, "Prefer fewer store visits")
	optimizeCmd.Flags().BoolVar(&optimizeOrganic, "prefer-organic", false, "Prefer organic products")
	optimizeCmd.Flags().StringVar(&optimizeOutput, "output", "table", "Output format: table or json")
	optimizeCmd.MarkFlagRequired("region")
	optimizeCmd.MarkFlagRequired("lat")
	optimizeCmd.MarkFlagRequired("lon")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repo := catalog.NewRepository(database.Pool())
	items, err := repo.Snapshot(ctx, optimizeRegion)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info().Str("region", optimizeRegion).Int("items", len(items)).Msg("Loaded catalog snapshot")

	start := time.Now().Truncate(24 * time.Hour)
	optimizer := planner.NewOptimizer(&cfg.Planner, planner.NewMetricsRecorder())
	plan, err := optimizer.Plan(ctx, &planner.PlanRequest{
		Ingredients: args,
		Catalog:     items,
		Location:    planner.Location{Latitude: optimizeLat, Longitude: optimizeLon},
		Timeframe: planner.Timeframe{
			Start: start,
			End:   start.AddDate(0, 0, optimizeDays),
		},
		Preferences: planner.Preferences{
			MaximizeSavings: optimizeSavings,
			MinimizeStores:  optimizeStores,
			PreferOrganic:   optimizeOrganic,
		},
		MaxDistanceKm: optimizeMaxDistance,
	})
	if err != nil {
		return err
	}

	switch strings.ToLower(optimizeOutput) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(plan)
	case "table":
		outputPlanTable(plan)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", optimizeOutput)
	}
}

func outputPlanTable(plan *planner.Plan) {
	fmt.Printf("\nShopping Plan\n")
	fmt.Println(strings.Repeat("-", 60))

	if len(plan.Purchases) == 0 {
		fmt.Println("No discounted products matched.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Ingredient\tProduct\tStore\tDay\tPrice\tSavings\n")
		fmt.Fprintf(w, "----------\t-------\t-----\t---\t-----\t-------\n")
		for _, p := range plan.Purchases {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f kr\t%.2f kr\n",
				p.Ingredient, p.ProductName, p.StoreName,
				p.PurchaseDay.Format("2006-01-02"), p.Price, p.Savings)
		}
		w.Flush()
	}

	if len(plan.Unmatched) > 0 {
		fmt.Printf("\nUnmatched ingredients: %s\n", strings.Join(plan.Unmatched, ", "))
	}

	fmt.Printf("\nStores to visit:  %d\n", plan.StoreCount())
	fmt.Printf("Total savings:    %.2f kr\n", plan.TotalSavings)
	fmt.Printf("Time savings:     %.1f h\n", plan.TimeSavingsHours)
}
