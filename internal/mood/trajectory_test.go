package mood

import (
	"testing"
	"time"
)

func makePoints(spacing time.Duration, scores ...float64) []TrajectoryPoint {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	pts := make([]TrajectoryPoint, len(scores))
	for i, s := range scores {
		pts[i] = TrajectoryPoint{
			Timestamp: base.Add(time.Duration(i) * spacing),
			MoodScore: s,
		}
	}
	return pts
}

func TestBuildTrajectoryDirection(t *testing.T) {
	d := NewDeltaDetector(nil, nil)

	cases := []struct {
		name   string
		scores []float64
		want   TrajectoryDirection
	}{
		{"improving", []float64{3, 4, 5, 6}, TrajectoryImproving},
		{"declining", []float64{6, 5, 4, 3}, TrajectoryDeclining},
		{"volatile", []float64{2, 8, 2, 8}, TrajectoryVolatile},
		{"flat", []float64{5, 5.2, 4.9, 5.1}, TrajectoryStable},
		{"single point", []float64{5}, TrajectoryStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			traj := d.BuildTrajectory(makePoints(time.Hour, tc.scores...))
			if traj.Direction != tc.want {
				t.Errorf("direction = %s, want %s", traj.Direction, tc.want)
			}
		})
	}
}

func TestBuildTrajectorySignificance(t *testing.T) {
	d := NewDeltaDetector(nil, nil)
	flat := d.BuildTrajectory(makePoints(time.Hour, 5, 5, 5, 5))
	steep := d.BuildTrajectory(makePoints(time.Hour, 2, 4, 6, 8))
	if flat.Significance != 0 {
		t.Errorf("flat significance = %v, want 0", flat.Significance)
	}
	if steep.Significance <= flat.Significance {
		t.Errorf("steep significance %v not above flat %v", steep.Significance, flat.Significance)
	}
	if steep.Significance > 1 {
		t.Errorf("significance %v above 1", steep.Significance)
	}
}

func TestIdentifyTurningPoints(t *testing.T) {
	d := NewDeltaDetector(nil, nil)

	t.Run("breakthrough at local minimum", func(t *testing.T) {
		tps := d.IdentifyTurningPoints(makePoints(time.Hour, 6, 3, 6))
		if len(tps) != 1 {
			t.Fatalf("turning points = %d, want 1", len(tps))
		}
		if tps[0].Type != TurningBreakthrough {
			t.Errorf("type = %s, want %s", tps[0].Type, TurningBreakthrough)
		}
		if !almostEqual(tps[0].Magnitude, 6.0, 1e-9) {
			t.Errorf("magnitude = %v, want 6.0", tps[0].Magnitude)
		}
	})

	t.Run("setback at local maximum", func(t *testing.T) {
		tps := d.IdentifyTurningPoints(makePoints(time.Hour, 3, 6, 3))
		if len(tps) != 1 || tps[0].Type != TurningSetback {
			t.Fatalf("got %+v, want one setback", tps)
		}
	})

	t.Run("too few points", func(t *testing.T) {
		if tps := d.IdentifyTurningPoints(makePoints(time.Hour, 3, 6)); tps != nil {
			t.Errorf("got %+v, want nil", tps)
		}
	})

	t.Run("small oscillation ignored", func(t *testing.T) {
		if tps := d.IdentifyTurningPoints(makePoints(time.Hour, 5, 4.5, 5)); len(tps) != 0 {
			t.Errorf("got %+v, want none", tps)
		}
	})
}

func TestMergeTurningPoints(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	points := []TurningPoint{
		{Timestamp: base, Type: TurningBreakthrough, Magnitude: 2.5, Factors: []string{"a"}},
		{Timestamp: base.Add(10 * time.Minute), Type: TurningBreakthrough, Magnitude: 4.0, Factors: []string{"b"}},
		{Timestamp: base.Add(15 * time.Minute), Type: TurningSetback, Magnitude: 3.0, Factors: []string{"c"}},
	}

	merged := mergeTurningPoints(points, 30*time.Minute)
	if len(merged) != 2 {
		t.Fatalf("merged = %d points, want 2", len(merged))
	}
	if merged[0].Magnitude != 4.0 {
		t.Errorf("merged magnitude = %v, want the larger 4.0", merged[0].Magnitude)
	}
	if len(merged[0].Factors) != 2 {
		t.Errorf("merged factors = %v, want union of both", merged[0].Factors)
	}
	if merged[1].Type != TurningSetback {
		t.Errorf("second point type = %s, want %s", merged[1].Type, TurningSetback)
	}

	// Outside the window the same types stay separate.
	apart := []TurningPoint{
		{Timestamp: base, Type: TurningSetback, Magnitude: 2.5},
		{Timestamp: base.Add(2 * time.Hour), Type: TurningSetback, Magnitude: 3.0},
	}
	if got := mergeTurningPoints(apart, 30*time.Minute); len(got) != 2 {
		t.Errorf("distant points merged to %d, want 2", len(got))
	}
}

func TestDetectEmotionalPlateau(t *testing.T) {
	d := NewDeltaDetector(nil, nil)

	flat := d.DetectEmotionalPlateau(makePoints(time.Hour, 5.0, 5.2, 4.9, 5.1))
	if !flat.IsPlateau {
		t.Errorf("near-constant scores not a plateau (variance %v)", flat.Variance)
	}
	if flat.Duration != 3*time.Hour {
		t.Errorf("duration = %v, want 3h", flat.Duration)
	}

	moving := d.DetectEmotionalPlateau(makePoints(time.Hour, 3, 5, 7))
	if moving.IsPlateau {
		t.Errorf("rising scores reported as plateau (variance %v)", moving.Variance)
	}

	if short := d.DetectEmotionalPlateau(makePoints(time.Hour, 5, 5)); short.IsPlateau {
		t.Error("two points should never report a plateau")
	}
}

func TestCalculateMoodVelocity(t *testing.T) {
	d := NewDeltaDetector(nil, nil)

	pts := makePoints(time.Hour, 4, 6, 8)
	if v := d.CalculateMoodVelocity(pts, 0); !almostEqual(v, 2.0, 1e-9) {
		t.Errorf("velocity = %v, want 2.0 points per hour", v)
	}

	// A trailing window drops the early flat stretch.
	windowed := makePoints(time.Hour, 5, 5, 5, 9)
	if v := d.CalculateMoodVelocity(windowed, 90*time.Minute); !almostEqual(v, 4.0, 1e-9) {
		t.Errorf("windowed velocity = %v, want 4.0", v)
	}

	if v := d.CalculateMoodVelocity(makePoints(time.Hour, 5), 0); v != 0 {
		t.Errorf("single point velocity = %v, want 0", v)
	}
}

func TestDetectSuddenTransitions(t *testing.T) {
	d := NewDeltaDetector(nil, nil)

	t.Run("sudden spike", func(t *testing.T) {
		trs := d.DetectSuddenTransitions(makePoints(5*time.Minute, 5.0, 7.5))
		if len(trs) != 1 {
			t.Fatalf("transitions = %d, want 1", len(trs))
		}
		if trs[0].Kind != "sudden" {
			t.Errorf("kind = %s, want sudden (velocity %v)", trs[0].Kind, trs[0].Velocity)
		}
	})

	t.Run("gradual shift", func(t *testing.T) {
		trs := d.DetectSuddenTransitions(makePoints(4*time.Hour, 5.0, 7.5))
		if len(trs) != 1 || trs[0].Kind != "gradual" {
			t.Fatalf("got %+v, want one gradual transition", trs)
		}
	})

	t.Run("recovery window", func(t *testing.T) {
		trs := d.DetectSuddenTransitions(makePoints(4*time.Hour, 3.0, 5.5, 6.0))
		if len(trs) == 0 {
			t.Fatal("no transitions found")
		}
		if trs[0].Kind != "recovery" {
			t.Errorf("kind = %s, want recovery", trs[0].Kind)
		}
	})

	t.Run("decline window", func(t *testing.T) {
		trs := d.DetectSuddenTransitions(makePoints(4*time.Hour, 7.0, 4.5, 4.0))
		if len(trs) == 0 {
			t.Fatal("no transitions found")
		}
		if trs[0].Kind != "decline" {
			t.Errorf("kind = %s, want decline", trs[0].Kind)
		}
	})

	t.Run("small moves ignored", func(t *testing.T) {
		if trs := d.DetectSuddenTransitions(makePoints(time.Hour, 5.0, 6.0, 5.5)); len(trs) != 0 {
			t.Errorf("got %+v, want none", trs)
		}
	})
}
