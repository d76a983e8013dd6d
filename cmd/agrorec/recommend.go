package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/recommender"
)

type recommendFlags struct {
	consumer  string
	lat, lon  float64
	products  []string
	maxKm     float64
	organic   bool
	objective string
	regional  bool
	topN      int
	rule      string
	weights   string
	exclude   []int64
	asJSON    bool
}

func createRecommendCmd() *cobra.Command {
	return newRecommendCmd(&recommendFlags{})
}

func newRecommendCmd(f *recommendFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank associations for a single consumer query",
		Example: `  agrorec recommend --consumer Consumidor_001 --lat -15.7942 --lon -47.8822 \
    --products "Alface Americana,Tomate" --objective alta_vitamina_c`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.query(cmd, appCfg.Defaults)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := openStore(ctx, appCfg, false)
			if err != nil {
				return err
			}
			if s != nil {
				defer s.Close()
			}
			rec, err := buildRecommender(ctx, appCfg, s)
			if err != nil {
				return err
			}
			results, err := rec.Recommend(ctx, q)
			if err != nil {
				return err
			}
			if f.asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printRecommendations(results)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.consumer, "consumer", "", "consumer id used for collaborative scoring")
	fl.Float64Var(&f.lat, "lat", 0, "consumer latitude")
	fl.Float64Var(&f.lon, "lon", 0, "consumer longitude")
	fl.StringSliceVar(&f.products, "products", nil, "desired products, comma separated")
	fl.Float64Var(&f.maxKm, "max-km", 0, "maximum distance in km")
	fl.BoolVar(&f.organic, "organic", false, "only organic associations")
	fl.StringVar(&f.objective, "objective", "", "nutrition objective (high_vitamin_c, alta_fibra, ...)")
	fl.BoolVar(&f.regional, "regional", true, "consider regional relevance")
	fl.IntVar(&f.topN, "top-n", 0, "number of results")
	fl.StringVar(&f.rule, "rule", "", "CEL rule evaluated per association")
	fl.StringVar(&f.weights, "weights", "", "distance,rating,nutrition,regional,collaborative")
	fl.Int64SliceVar(&f.exclude, "exclude", nil, "association ids to exclude")
	fl.BoolVar(&f.asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

// query 只覆盖显式设置的参数，其余沿用配置中的默认偏好。
func (f *recommendFlags) query(cmd *cobra.Command, defaults core.Preferences) (core.Query, error) {
	q := core.Query{ConsumerID: f.consumer, Preferences: defaults}
	q.Location.Lat, q.Location.Lon = f.lat, f.lon

	p := &q.Preferences
	fl := cmd.Flags()
	if fl.Changed("products") {
		p.DesiredProducts = f.products
	}
	if fl.Changed("max-km") {
		p.MaxDistanceKm = f.maxKm
	}
	if fl.Changed("organic") {
		p.OrganicOnly = f.organic
	}
	if fl.Changed("objective") {
		obj, err := core.ParseNutritionObjective(f.objective)
		if err != nil {
			return q, err
		}
		p.NutritionObjective = obj
	}
	if fl.Changed("regional") {
		p.ConsiderRegionalRelevance = f.regional
	}
	if fl.Changed("top-n") {
		p.TopN = f.topN
	}
	if fl.Changed("rule") {
		p.Rule = f.rule
	}
	if fl.Changed("exclude") {
		p.ExcludeIDs = f.exclude
	}
	if fl.Changed("weights") {
		w, err := parseWeights(f.weights)
		if err != nil {
			return q, err
		}
		p.Weights = w
	}
	return q, nil
}

func parseWeights(s string) (core.Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return core.Weights{}, fmt.Errorf("weights: expected 5 comma separated values, got %d", len(parts))
	}
	vals := make([]float64, 5)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return core.Weights{}, fmt.Errorf("weights: %w", err)
		}
		vals[i] = v
	}
	return core.Weights{
		Distance:      vals[0],
		Rating:        vals[1],
		Nutrition:     vals[2],
		Regional:      vals[3],
		Collaborative: vals[4],
	}, nil
}

func printRecommendations(results []recommender.Recommendation) {
	if len(results) == 0 {
		fmt.Println("no associations match the given filters")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tKM\tSCORE\tDIST\tRATING\tNUTR\tREG\tCF\tPRODUCTS")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%s\t%.1f\t%.3f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			i+1, r.AssociationID, r.Name, r.DistanceKm, r.FinalScore,
			r.SubScores.Distance, r.SubScores.Rating, r.SubScores.Nutrition,
			r.SubScores.Regional, r.SubScores.Collaborative,
			strings.Join(r.OfferedProducts, ", "))
	}
	w.Flush()
}
