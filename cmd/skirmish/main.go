package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/hexfront/tactics/internal/battle"
	"github.com/hexfront/tactics/internal/combat"
	"github.com/hexfront/tactics/internal/config"
	"github.com/hexfront/tactics/internal/influx"
	"github.com/hexfront/tactics/internal/logging"
	intOtel "github.com/hexfront/tactics/internal/otel"
	"github.com/hexfront/tactics/internal/scenario"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"

	AppName = "skirmish"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	configDir := flags.StringP("config", "c", ".", "directory holding "+config.FileName)
	scenarioPath := flags.StringP("scenario", "s", "", "scenario file to replay")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	render := flags.Bool("render", true, "print the battlefield after the replay")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *scenarioPath == "" {
		return errors.New("no scenario given, use --scenario")
	}

	start := time.Now()
	configErr := config.Load(*configDir)
	if f := flags.Lookup("log-level"); f.Changed {
		viper.Set("logLevel", f.Value.String())
	}

	logs := logging.NewManager()
	if err := logs.Setup(config.GetLogConfig(), AppName, start, os.Stderr); err != nil {
		return err
	}
	defer logs.Close()
	log := logs.Component("main")
	if configErr != nil {
		log.Warn().Err(configErr).Msg("Failed to load config, using defaults!")
	}
	log.Info().Str("version", Version).Str("build", BuildDate).Msg("Starting up...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := scenario.Load(*scenarioPath)
	if err != nil {
		return err
	}
	rules := config.GetRulesConfig()
	m, reg, err := s.Setup(rules.MovementPoints)
	if err != nil {
		return err
	}
	seed := rules.Seed
	if s.Seed != 0 {
		seed = s.Seed
	}
	if seed == 0 {
		seed = uint64(start.UnixNano())
	}

	j, err := openJournal(logs)
	if err != nil {
		return err
	}
	defer func() {
		if err := j.close(); err != nil {
			log.Error().Err(err).Msg("Failed to close journal")
		}
	}()
	match := s.MatchInfo(m, start, seed)
	if err := j.backend.StartMatch(match); err != nil {
		return fmt.Errorf("failed to start match: %w", err)
	}

	opts := []battle.Option{
		battle.WithLogger(logs.Component("battle")),
		battle.WithRecorder(j.backend),
		battle.WithRules(combatRules(rules.Combat)),
		battle.WithRand(combat.NewRand(seed)),
		battle.WithMovementPoints(rules.MovementPoints),
		battle.WithMaxDepth(rules.MaxSearchDepth),
	}

	stats := influx.NewManager(logs.Component("influx"), config.GetInfluxConfig())
	switch err := stats.Connect(ctx); {
	case errors.Is(err, influx.ErrDisabled):
	case err != nil:
		log.Warn().Err(err).Msg("Statistics disabled")
	default:
		opts = append(opts, battle.WithStats(stats, s.Match))
	}
	defer stats.Close()

	provider := intOtel.New(config.GetOTelConfig())
	instruments, err := intOtel.NewInstruments(provider.Meter(AppName))
	if err != nil {
		return err
	}
	opts = append(opts, battle.WithMetrics(instruments))

	b := battle.New(m, reg, opts...)
	log.Info().Str("match", s.Match).Str("map", m.Name()).Uint64("seed", seed).
		Int("units", reg.Len()).Int("orders", len(s.Orders)).Msg("Replaying scenario")

	rep, err := scenario.Run(ctx, b, s.Orders,
		scenario.WithLogger(logs.Component("orders")),
		scenario.WithMeter(provider.Meter(AppName)),
	)
	if err != nil {
		return err
	}
	if err := j.backend.EndMatch(); err != nil {
		log.Error().Err(err).Msg("Failed to end match")
	}

	printReport(out, s, rep)
	if path := j.exportPath(); path != "" {
		fmt.Fprintf(out, "Journal: %s\n", path)
	}
	if *render {
		fmt.Fprintf(out, "\n%s", b.Render())
	}
	return nil
}

func combatRules(c config.CombatConfig) combat.Rules {
	return combat.Rules{
		BaseMin:       c.BaseMin,
		RangedBaseMin: c.RangedBaseMin,
		BaseSpread:    c.BaseSpread,
		FlankBonus:    c.FlankBonus,
		PenaltyBand:   c.PenaltyBand,
		PenaltyStep:   c.PenaltyStep,
	}
}

func printReport(out io.Writer, s *scenario.Scenario, rep *scenario.Report) {
	fmt.Fprintf(out, "%s: %d turns, %d moves, %d engagements, %d withdrawn\n",
		s.Match, rep.Turns, rep.Moves, len(rep.Engagements), rep.Withdrawn)
	for _, res := range rep.Engagements {
		e := res.Event
		fmt.Fprintf(out, "  turn %d: %s (%d HP) attacks %s (%d HP): %s\n",
			e.Turn, e.Attacker.Name, e.Attacker.FinalHP, e.Defender.Name, e.Defender.FinalHP, e.Verdict)
	}
	for _, r := range rep.Rejected {
		fmt.Fprintf(out, "  order %d refused: %v\n", r.Index, r.Err)
	}
	if owner, ok := rep.Winner(); ok {
		fmt.Fprintf(out, "Winner: %s\n", owner)
	}
}
