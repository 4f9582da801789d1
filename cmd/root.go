package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adaptive-signal/adaptive-signal/sim"
	"github.com/adaptive-signal/adaptive-signal/sim/intersection"
)

var (
	// CLI flags for the simulated intersection
	seed           int64    // Seed for arrival generation
	cycles         int      // Number of control decisions to run
	directions     []string // Approach names, served in this order
	lanes          int      // Lanes per approach
	alpha          float64  // EMA smoothing factor
	arrivalRate    float64  // Vehicles per second per approach
	arrivalCV      float64  // Headway coefficient of variation
	arrivalProcess string   // poisson, gamma or weibull
	saturationFlow float64  // Vehicles per second of green per lane
	lostTime       int      // Clearance seconds between phases
	phasePolicy    string   // round-robin or longest-queue
	maxRepeat      int      // longest-queue consecutive green limit
	traceLevel     string   // none or decisions

	// Shared flags
	knowledgePath string // Allocation rules file (YAML or JSON)
	logLevel      string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "adaptive-signal",
	Short: "Adaptive green-time allocation for a signalized intersection",
}

// setupLogging parses the --log flag and configures logrus on stderr.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
}

// runCmd drives the decision pipeline against synthetic traffic
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the controller against a simulated intersection",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		knowledge := sim.LoadKnowledgeOrDefault(knowledgePath)
		config := intersection.Config{
			Directions:     directions,
			Lanes:          lanes,
			Cycles:         cycles,
			Alpha:          alpha,
			ArrivalRate:    arrivalRate,
			ArrivalCV:      arrivalCV,
			ArrivalProcess: arrivalProcess,
			SaturationFlow: saturationFlow,
			LostTime:       lostTime,
			PhasePolicy:    phasePolicy,
			MaxRepeat:      maxRepeat,
			Seed:           seed,
			TraceLevel:     traceLevel,
		}
		logrus.Infof("Starting run: %d cycles, directions=%v, lanes=%d, rate=%.3f veh/s, knowledge=%+v",
			cycles, directions, lanes, arrivalRate, knowledge)

		startTime := time.Now()
		if err := runSimulation(config, knowledge, os.Stdout); err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		logrus.Infof("Run complete in %v.", time.Since(startTime))
	},
}

// runSimulation runs the intersection and writes the summary (and the
// per-cycle records when tracing is on) as indented JSON to w.
func runSimulation(config intersection.Config, knowledge sim.KnowledgeConfig, w io.Writer) error {
	x, err := intersection.New(config, knowledge)
	if err != nil {
		return err
	}
	summary, err := x.Run()
	if err != nil {
		return err
	}

	out := struct {
		Summary any `json:"summary"`
		Records any `json:"records,omitempty"`
	}{Summary: summary}
	if len(x.Trace().Records) > 0 {
		out.Records = x.Trace().Records
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := intersection.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&knowledgePath, "knowledge", sim.DefaultKnowledgePath, "Path to the allocation rules file (YAML or JSON); defaults are used if it cannot be loaded")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for arrival generation")
	runCmd.Flags().IntVar(&cycles, "cycles", defaults.Cycles, "Number of control decisions")
	runCmd.Flags().StringSliceVar(&directions, "directions", defaults.Directions, "Comma-separated approach names, served round robin")
	runCmd.Flags().IntVar(&lanes, "lanes", defaults.Lanes, "Lanes per approach")
	runCmd.Flags().Float64Var(&alpha, "alpha", defaults.Alpha, "EMA smoothing factor in (0, 1]")
	runCmd.Flags().StringVar(&phasePolicy, "phase-policy", defaults.PhasePolicy, "Which approach gets the next green (round-robin, longest-queue)")
	runCmd.Flags().IntVar(&maxRepeat, "max-repeat", intersection.DefaultMaxRepeat, "Consecutive greens one approach may get under longest-queue")

	// Synthetic traffic
	runCmd.Flags().Float64Var(&arrivalRate, "rate", defaults.ArrivalRate, "Mean vehicle arrivals per second per approach")
	runCmd.Flags().Float64Var(&arrivalCV, "arrival-cv", defaults.ArrivalCV, "Headway coefficient of variation (gamma, weibull)")
	runCmd.Flags().StringVar(&arrivalProcess, "arrival-process", defaults.ArrivalProcess, "Arrival process (poisson, gamma, weibull)")
	runCmd.Flags().Float64Var(&saturationFlow, "saturation-flow", defaults.SaturationFlow, "Vehicles discharged per second of green per lane")
	runCmd.Flags().IntVar(&lostTime, "lost-time", defaults.LostTime, "Clearance seconds between phases")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", defaults.TraceLevel, "Decision trace level (none, decisions)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(knowledgeCmd)
}
