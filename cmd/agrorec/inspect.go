package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/recommender"
)

func createInspectCmd() *cobra.Command {
	var (
		objective string
		product   string
		n         int
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print snapshot statistics, nutrient rankings and regional production",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, appCfg, false)
			if err != nil {
				return err
			}
			if s != nil {
				defer s.Close()
			}
			tables, err := loadTables(ctx, appCfg, s)
			if err != nil {
				return err
			}
			snap, err := recommender.FromTables(tables)
			if err != nil {
				return err
			}
			obj, err := core.ParseNutritionObjective(objective)
			if err != nil {
				return err
			}
			printSnapshot(snap, obj, product, n)
			return nil
		},
	}
	cmd.Flags().StringVar(&objective, "objective", string(core.ObjectiveHighVitaminC), "nutrition objective to rank foods by")
	cmd.Flags().StringVar(&product, "product", "Morango", "product whose producing regions are listed")
	cmd.Flags().IntVarP(&n, "n", "n", 5, "rows per listing")
	return cmd
}

func printSnapshot(snap *recommender.Snapshot, obj core.NutritionObjective, product string, n int) {
	cat := snap.Catalog
	st := cat.Stats()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATALOG\t")
	fmt.Fprintf(w, "associations\t%d\n", st.Associations)
	fmt.Fprintf(w, "organic\t%d\n", st.Organic)
	fmt.Fprintf(w, "missing location\t%d\n", st.MissingLocation)
	fmt.Fprintf(w, "distinct products\t%d\n", st.DistinctProducts)
	fmt.Fprintf(w, "product links\t%d\n", st.ProductLinks)
	fmt.Fprintf(w, "nutrient products\t%d\n", st.NutrientProducts)
	fmt.Fprintf(w, "production pairs\t%d\n", st.ProductionPairs)
	fmt.Fprintf(w, "ratings\t%d\n", snap.Ratings.Len())
	fmt.Fprintf(w, "consumers\t%d\n", len(snap.Ratings.Consumers()))
	fmt.Fprintf(w, "sparsity\t%.3f\n", snap.Ratings.Sparsity())
	w.Flush()

	if obj != core.ObjectiveNone {
		fmt.Printf("\nTOP FOODS BY %s\n", obj)
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tGROUP\tSCORE")
		for _, f := range cat.Nutrients().Top(obj, n) {
			score, _ := cat.Nutrients().Score(f.Product, obj)
			fmt.Fprintf(w, "%s\t%s\t%.3f\n", f.Product, f.Group, score)
		}
		w.Flush()
	}

	canonical, ok := cat.Vocabulary().Canonicalize(product)
	if !ok {
		fmt.Printf("\nproduct %q is not in the vocabulary\n", product)
		return
	}
	fmt.Printf("\nTOP REGIONS FOR %s (%.1f t)\n", canonical, cat.Production().Total(canonical))
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tAREA_HA\tOUTPUT_T\tSHARE_%")
	for _, r := range cat.Production().TopRegions(canonical, n) {
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\n", r.Region, r.AreaHa, r.OutputT, r.SharePercent)
	}
	w.Flush()
}
