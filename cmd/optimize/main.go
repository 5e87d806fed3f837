// Package main tunes suspension parameters with Nelder-Mead so that a kart
// settles quickly after a drop, sags to a target ride height and keeps
// body roll low when sliding.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/kart/config"
)

// TuneRecord is one row of tune_log.csv.
type TuneRecord struct {
	Eval       int     `csv:"eval"`
	Cost       float64 `csv:"cost"`
	Spring     float64 `csv:"spring_stiffness"`
	Damper     float64 `csv:"damper_stiffness"`
	FrontARB   float64 `csv:"front_anti_roll"`
	RearARB    float64 `csv:"rear_anti_roll"`
	SettleSec  float64 `csv:"settle_sec"`
	Overshoot  float64 `csv:"overshoot"`
	Sag        float64 `csv:"sag"`
	TiltMax    float64 `csv:"tilt_max"`
	MinContact float64 `csv:"min_contact"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// newSettings stops after maxEvals evaluations or once the cost stalls.
func newSettings(maxEvals int) *optimize.Settings {
	return &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-4,
			Iterations: 30,
		},
	}
}

func newMethod() *optimize.NelderMead {
	return &optimize.NelderMead{
		SimplexSize: 0.15,
	}
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 400, "Simulation ticks per scenario")
	maxEvals := flag.Int("max-evals", 120, "Maximum number of evaluations")
	targetSag := flag.Float64("target-sag", 0.08, "Static suspension compression to aim for, m")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Scenario sims log at info on every spawn; keep only warnings.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, int32(*ticks), *targetSag, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := newSettings(*maxEvals)
	method := newMethod()

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestCost := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	// Wrap the function to log evaluations
	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		cost := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if cost < bestCost {
			bestCost = cost
			bestParams = clamped
		}

		m := evaluator.LastMetrics()
		rec := []TuneRecord{{
			Eval:       evalCount,
			Cost:       cost,
			Spring:     clamped[0],
			Damper:     clamped[1],
			FrontARB:   clamped[2],
			RearARB:    clamped[3],
			SettleSec:  m.SettleSec,
			Overshoot:  m.Overshoot,
			Sag:        m.Sag,
			TiltMax:    m.TiltMax,
			MinContact: m.MinContact,
		}}
		var werr error
		if evalCount == 1 {
			werr = gocsv.Marshal(rec, logFile)
		} else {
			werr = gocsv.MarshalWithoutHeaders(rec, logFile)
		}
		if werr != nil {
			log.Printf("failed to write tune log: %v", werr)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(max(0, *maxEvals-evalCount)) * avgPerEval

		fmt.Printf("Eval %d/%d: cost=%.4f settle=%.2fs sag=%.3fm tilt=%.1fdeg (best=%.4f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, cost, m.SettleSec, m.Sag, m.TiltMax, bestCost,
			formatDuration(elapsed), formatDuration(remaining))

		return cost
	}

	fmt.Printf("Starting Nelder-Mead with %d parameters, max_evals=%d, ticks=%d\n", dim, *maxEvals, *ticks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best cost: %.4f\n", bestCost)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.1f\n", spec.Path, bestParams[i])
	}

	bestCfg, err := baseCfg.Clone()
	if err != nil {
		log.Fatalf("failed to copy config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
