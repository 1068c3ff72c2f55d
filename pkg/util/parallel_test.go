package util

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}

	results, err := ParallelMap(context.Background(), inputs, 8, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("results = %d, want %d", len(results), len(inputs))
	}
	for i, r := range results {
		if r != i*2 {
			t.Fatalf("results[%d] = %d, want %d", i, r, i*2)
		}
	}
}

func TestParallelMapEmptyInput(t *testing.T) {
	results, err := ParallelMap(context.Background(), nil, 4, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	if err != nil || results != nil {
		t.Errorf("empty input = (%v, %v), want (nil, nil)", results, err)
	}
}

func TestParallelMapFirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	inputs := []int{0, 1, 2, 3, 4, 5}

	results, err := ParallelMap(context.Background(), inputs, 2, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil on error", results)
	}
}

func TestParallelMapCancelStopsWork(t *testing.T) {
	var calls atomic.Int64
	inputs := make([]int, 1000)
	boom := errors.New("boom")

	_, err := ParallelMap(context.Background(), inputs, 1, func(ctx context.Context, n int) (int, error) {
		if calls.Add(1) == 1 {
			return 0, boom
		}
		return n, nil
	})
	if !errors.Is(err, boom) {
		t.Fatal(err)
	}
	if got := calls.Load(); got > 2 {
		t.Errorf("fn ran %d times after the first failure, want the feed to stop", got)
	}
}

func TestParallelMapZeroWorkerFloor(t *testing.T) {
	results, err := ParallelMap(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("n=%d", n), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 || results[2] != "n=3" {
		t.Errorf("results = %v, want 3 formatted entries", results)
	}
}
