// cmd/calibrate/main.go
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
)

// Offline calibration pass: validate stored scores against the stored human
// ratings, apply the proposed adjustments, re-measure, and keep or revert.
func main() {
	log.Printf("[INFO] Starting %v calibration %v...", v.AppName, v.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		log.Printf("[INFO] Received signal %s, cancelling...", s)
		cancel()
	}()

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

	records, err := store.FetchHumanRecords()
	if err != nil {
		log.Fatal(err)
	}
	if len(records) == 0 {
		log.Println("[INFO] No human ratings stored, nothing to calibrate against")
		return
	}

	vr, applied, err := engine.RunValidation(records)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[INFO] Validation %s: pearson=%.3f mae=%.3f concordance=%s",
		vr.ID, vr.PearsonCorrelation, vr.MeanAbsoluteError, vr.Concordance)

	if len(applied) == 0 {
		log.Println("[INFO] No adjustments proposed")
		return
	}

	after, err := engine.RevalidateStored(ctx, records)
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.SettleCalibrations(after); err != nil {
		log.Fatal(err)
	}

	log.Printf("[INFO] Calibration settled: pearson %.3f -> %.3f, mae %.3f -> %.3f",
		vr.PearsonCorrelation, after.PearsonCorrelation,
		vr.MeanAbsoluteError, after.MeanAbsoluteError)
}
