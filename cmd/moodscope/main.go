// cmd/moodscope/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"moodscope/internal/config"
	"moodscope/internal/core"
	"moodscope/internal/storage"
	v "moodscope/internal/version"
	"moodscope/pkg/jobmgr"
)

func main() {
	log.Printf("[INFO] Starting %v %v...", v.AppName, v.AppVersion)

	cfg := config.New()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	engine, err := core.New(cfg, store)
	if err != nil {
		log.Fatal(err)
	}

	in, err := core.LoadInput(cfg.InputPath)
	if err != nil {
		log.Fatal(err)
	}

	events := make(chan jobmgr.Event, 4)
	jm := jobmgr.NewManager(func(ev jobmgr.Event) {
		log.Println("[JOB]", ev)
		events <- ev
	})

	err = jm.StartAsync("score", func(ctx context.Context) error {
		report, err := engine.ScoreBatch(ctx, in)
		if err != nil {
			return err
		}

		path, err := core.WriteReport(cfg.ReportDir, report)
		if err != nil {
			return err
		}
		log.Printf("[INFO] Report written to %s", path)

		if len(in.HumanRecords) > 0 {
			if err := store.AppendHumanRecords(in.HumanRecords); err != nil {
				return err
			}
			vr, applied, err := engine.RunValidation(in.HumanRecords)
			if err != nil {
				return err
			}
			log.Printf("[INFO] Validation %s: pearson=%.3f mae=%.3f concordance=%s, %d calibration(s) applied",
				vr.ID, vr.PearsonCorrelation, vr.MeanAbsoluteError, vr.Concordance, len(applied))
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case s := <-sig:
			log.Printf("[INFO] Received signal %s, shutting down...", s)
			_ = jm.Stop("score")
			return
		case ev := <-events:
			switch ev.Phase {
			case jobmgr.PhaseDone:
				log.Println("[INFO] Batch run finished")
				return
			case jobmgr.PhaseFailed:
				log.Println("[ERR] Batch run failed:", ev.Err)
				os.Exit(1)
			}
		}
	}
}
