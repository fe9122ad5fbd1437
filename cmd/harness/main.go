// Command harness runs the labeled conversation corpus through the event
// detector and prints the detection and calendar-readiness reports.
//
// Usage:
//
//	go run ./cmd/harness                      # every case
//	go run ./cmd/harness -difficulty hard     # one tier
//	go run ./cmd/harness -name noon_edge_case # one case
//	go run ./cmd/harness -calendar -save      # add calendar report, persist both runs
//	go run ./cmd/harness -list                # list cases
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/omriShneor/whatsapp_eventer/internal/calendar"
	"github.com/omriShneor/whatsapp_eventer/internal/config"
	"github.com/omriShneor/whatsapp_eventer/internal/database"
	"github.com/omriShneor/whatsapp_eventer/internal/detector"
	"github.com/omriShneor/whatsapp_eventer/internal/evaluation"
	"github.com/omriShneor/whatsapp_eventer/internal/validator"
)

func main() {
	difficulty := flag.String("difficulty", "", "run one tier: easy, medium, hard or extreme")
	name := flag.String("name", "", "run a single case by name")
	withCalendar := flag.Bool("calendar", false, "also run the calendar-readiness pipeline")
	list := flag.Bool("list", false, "list the available cases and exit")
	save := flag.Bool("save", false, "persist run results to EVENTER_DB_PATH")
	flag.Parse()

	cfg := config.LoadFromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	corpus, err := evaluation.LoadCorpus()
	if err != nil {
		fatal("loading test corpus", err)
	}

	if *list {
		fmt.Println(evaluation.CaseList(corpus))
		return
	}

	cases, filter, err := corpus.Select(*difficulty, *name)
	if err != nil {
		fatal("selecting cases", err)
	}

	loc, fallback := cfg.Location()
	if fallback {
		fmt.Printf("Warning: unknown timezone %q, using %s\n", cfg.Timezone, loc)
	}

	runner := evaluation.NewRunner(
		detector.New(detector.Options{Location: loc, Logger: logger}),
		corpus,
		evaluation.RunnerOptions{
			Mapper:    calendar.NewMapper(calendar.Options{Location: loc, Source: cfg.Source, Logger: logger}),
			Validator: validator.New(validator.Options{Logger: logger}),
			Logger:    logger,
		},
	)

	summary := runner.RunCases(cases)
	fmt.Println(evaluation.Report(summary))
	runs := []*database.EvaluationRun{evaluation.NewDetectionRecord(summary, filter)}

	if *withCalendar {
		calendarSummary := runner.RunCalendarCases(cases)
		fmt.Println()
		fmt.Println(evaluation.CalendarReport(calendarSummary))
		runs = append(runs, evaluation.NewCalendarRecord(calendarSummary, filter))
	}

	if *save {
		if err := saveRuns(cfg.DBPath, runs); err != nil {
			fatal("saving runs", err)
		}
	}
}

func saveRuns(path string, runs []*database.EvaluationRun) error {
	db, err := database.New(path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, run := range runs {
		if err := db.SaveRun(run); err != nil {
			return err
		}
		fmt.Printf("Saved %s run %s to %s\n", run.Mode, run.ID, path)
	}
	return nil
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}
