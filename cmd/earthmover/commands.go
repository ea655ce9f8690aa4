package main

import (
	"context"
	"earthwork-route-service/internal/adapters/lkh"
	"earthwork-route-service/internal/adapters/textio"
	"earthwork-route-service/internal/config"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/ports"
	"earthwork-route-service/internal/services"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "earthmover",
		Short:         "Plan earthwork truck routes that level a field",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newSolveCommand(), newGenerateCommand(), newCheckCommand())
	return root
}

type truckOptions struct {
	capacity     float64
	gamma        float64
	minSegment   float64
	startX       float64
	startY       float64
	initialCargo float64
}

func addTruckFlags(fs *pflag.FlagSet, o *truckOptions) {
	fs.Float64Var(&o.capacity, "capacity", 1, "truck capacity in volume units")
	fs.Float64Var(&o.gamma, "gamma", services.DefaultGamma, "maximum turn angle in radians")
	fs.Float64Var(&o.minSegment, "min-segment", -1, "minimum movement length (negative: the field resolution)")
	fs.Float64Var(&o.startX, "start-x", 0, "start x coordinate")
	fs.Float64Var(&o.startY, "start-y", 0, "start y coordinate")
	fs.Float64Var(&o.initialCargo, "initial-cargo", 0, "cargo on board at the start")
}

type solveOptions struct {
	truck    truckOptions
	out      string
	strategy string
	policy   string
	choices  int
	alpha    float64
	seed     int64
	workers  int
	lkhBin   string
	check    bool
}

func newSolveCommand() *cobra.Command {
	o := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve FIELD_FILE",
		Short: "Solve a field file and write the route",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(context.Background(), cmd.OutOrStdout(), args[0], o)
		},
	}

	fs := cmd.Flags()
	addTruckFlags(fs, &o.truck)
	fs.StringVarP(&o.out, "out", "o", "", "route file (default: standard output)")
	fs.StringVar(&o.strategy, "strategy", string(services.StrategyMeta), "nearest_neighbour, grasp or meta")
	fs.StringVar(&o.policy, "repair-policy", domain.RepairRegularPolygon.String(), "regular_polygon or max_turn")
	fs.IntVar(&o.choices, "choices", services.DefaultChoices, "GRASP candidate list size")
	fs.Float64Var(&o.alpha, "alpha", services.DefaultStartAlpha, "GRASP greediness for the grasp strategy")
	fs.Int64Var(&o.seed, "seed", seedDefault(), "random seed")
	fs.IntVar(&o.workers, "workers", 0, "meta-solver restarts in parallel (0: GOMAXPROCS)")
	fs.StringVar(&o.lkhBin, "lkh", config.Get("LKH_BIN", ""), "LKH binary used to sequence chains (empty: Hungarian sequencing)")
	fs.BoolVar(&o.check, "check", true, "replay the route on a fresh field before writing it")
	return cmd
}

func seedDefault() int64 {
	v, err := strconv.ParseInt(config.Get("SOLVER_SEED", "1"), 10, 64)
	if err != nil {
		return 1
	}
	return v
}

func runSolve(ctx context.Context, stdout io.Writer, fieldPath string, o *solveOptions) error {
	field, cells, err := readField(fieldPath)
	if err != nil {
		return err
	}

	strategy, err := services.ParseStrategy(o.strategy)
	if err != nil {
		return err
	}
	policy, err := domain.ParseRepairPolicy(o.policy)
	if err != nil {
		return err
	}

	var tours ports.TourSolver
	if o.lkhBin != "" {
		tours = lkh.NewTourSolver(o.lkhBin, config.Get("LKH_WORKDIR", ""))
	}

	req := services.PlanRouteRequest{
		Strategy:     strategy,
		Capacity:     domain.QuantityFromFloat(o.truck.capacity),
		Gamma:        o.truck.gamma,
		MinSegment:   o.truck.minSegment,
		Start:        domain.Coordinates{X: o.truck.startX, Y: o.truck.startY},
		InitialCargo: domain.QuantityFromFloat(o.truck.initialCargo),
		Choices:      o.choices,
		Alpha:        o.alpha,
		Seed:         o.seed,
		Workers:      o.workers,
		Policy:       policy,
	}.WithDefaults(field)

	plan, err := services.PlanRoute(ctx, field, req, tours)
	if err != nil {
		return fmt.Errorf("solve %s: %w", fieldPath, err)
	}

	if o.check {
		if err := textio.CheckRoute(cells, plan.Path); err != nil {
			return fmt.Errorf("solve %s: %w", fieldPath, err)
		}
	}

	if err := writeRoute(stdout, o.out, plan.Path); err != nil {
		return err
	}

	if o.out != "" {
		fmt.Fprintf(stdout,
			"strategy=%s stopovers=%d distance=%.4f chains=%d lower_bound=%.4f cycle_cost=%.4f gap=%.2f%%\n",
			plan.Strategy, plan.Path.Len(), plan.Distance(),
			plan.Stats.Chains, plan.Stats.LowerBound, plan.Stats.CycleCost, plan.Stats.Gap(),
		)
	}
	return nil
}

type generateOptions struct {
	rows      int
	cols      int
	spacing   float64
	maxVolume int
	seed      int64
	out       string
}

func newGenerateCommand() *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random grid field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cells, err := textio.GenerateGrid(o.rows, o.cols, o.spacing, o.maxVolume, rand.New(rand.NewSource(o.seed)))
			if err != nil {
				return err
			}
			return withOutput(cmd.OutOrStdout(), o.out, func(w io.Writer) error { return textio.WriteCells(w, cells) })
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&o.rows, "rows", 10, "grid rows")
	fs.IntVar(&o.cols, "cols", 10, "grid columns")
	fs.Float64Var(&o.spacing, "spacing", 1, "distance between cell centers")
	fs.IntVar(&o.maxVolume, "max", 5, "largest absolute cell volume")
	fs.Int64Var(&o.seed, "seed", 1, "random seed")
	fs.StringVarP(&o.out, "out", "o", "", "field file (default: standard output)")
	return cmd
}

func newCheckCommand() *cobra.Command {
	o := &truckOptions{}
	cmd := &cobra.Command{
		Use:   "check FIELD_FILE ROUTE_FILE",
		Short: "Verify that a route levels a field and respects the truck limits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args[0], args[1], o)
		},
	}
	addTruckFlags(cmd.Flags(), o)
	return cmd
}

func runCheck(stdout io.Writer, fieldPath, routePath string, o *truckOptions) error {
	field, cells, err := readField(fieldPath)
	if err != nil {
		return err
	}

	f, err := os.Open(routePath)
	if err != nil {
		return fmt.Errorf("check: open %q: %w", routePath, err)
	}
	defer f.Close()

	path, err := textio.ReadRoute(f)
	if err != nil {
		return fmt.Errorf("check: %s: %w", routePath, err)
	}

	if err := textio.CheckRoute(cells, path); err != nil {
		return err
	}

	minSegment := o.minSegment
	if minSegment < 0 {
		minSegment = field.Resolution()
	}
	truck := &domain.Truck{
		Capacity:   domain.QuantityFromFloat(o.capacity),
		Gamma:      o.gamma,
		MinSegment: minSegment,
		Path:       path,
	}
	if err := truck.Validate(); err != nil {
		return fmt.Errorf("check: %w", err)
	}

	fmt.Fprintf(stdout, "ok stopovers=%d distance=%.4f\n", path.Len(), path.Distance())
	return nil
}

func readField(path string) (*domain.Field, []domain.Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open field %q: %w", path, err)
	}
	defer f.Close()

	field, cells, err := textio.ReadField(f)
	if err != nil {
		return nil, nil, fmt.Errorf("field %s: %w", path, err)
	}
	return field, cells, nil
}

func writeRoute(stdout io.Writer, out string, p *domain.Path) error {
	return withOutput(stdout, out, func(w io.Writer) error { return textio.WriteRoute(w, p) })
}

// withOutput runs write against the named file, or stdout when name is empty.
func withOutput(stdout io.Writer, name string, write func(io.Writer) error) error {
	if name == "" {
		return write(stdout)
	}

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", name, err)
	}
	return nil
}
