package mood

import (
	"fmt"
	"math"
	"time"
)

// BuildTrajectory derives direction and significance over ordered points.
func (d *DeltaDetector) BuildTrajectory(points []TrajectoryPoint) EmotionalTrajectory {
	traj := EmotionalTrajectory{Points: points, Direction: TrajectoryStable}
	if len(points) < 2 {
		return traj
	}

	scores := make([]float64, len(points))
	for i, pt := range points {
		scores[i] = pt.MoodScore
	}
	net := scores[len(scores)-1] - scores[0]
	volatility := stddevOf(scores)

	switch {
	case volatility > 2.0:
		traj.Direction = TrajectoryVolatile
	case net > 1.0:
		traj.Direction = TrajectoryImproving
	case net < -1.0:
		traj.Direction = TrajectoryDeclining
	}

	traj.Significance = clamp01((math.Abs(net) + volatility) / 8.0)
	traj.TurningPoints = d.IdentifyTurningPoints(points)
	return traj
}

// IdentifyTurningPoints finds sign flips and sharp accelerations. Requires at
// least 3 points. Adjacent points of the same type within the merge window are
// coalesced, keeping the larger magnitude and the union of factors.
func (d *DeltaDetector) IdentifyTurningPoints(points []TrajectoryPoint) []TurningPoint {
	if len(points) < 3 {
		return nil
	}
	p := d.params.Snapshot()
	var found []TurningPoint

	for i := 1; i < len(points)-1; i++ {
		before := points[i].MoodScore - points[i-1].MoodScore
		after := points[i+1].MoodScore - points[i].MoodScore

		// Local extremum: direction flips with enough combined movement.
		if before*after < 0 && math.Abs(before)+math.Abs(after) >= 2.0 {
			tp := TurningPoint{
				Timestamp: points[i].Timestamp,
				Magnitude: math.Abs(before) + math.Abs(after),
				Factors:   []string{fmt.Sprintf("direction flip at score %.1f", points[i].MoodScore)},
			}
			if before < 0 {
				tp.Type = TurningBreakthrough
				tp.Description = "low point followed by recovery"
			} else {
				tp.Type = TurningSetback
				tp.Description = "peak followed by decline"
			}
			found = append(found, tp)
			continue
		}

		// Acceleration: the pace of change at least doubles.
		if math.Abs(before) > 0.1 && math.Abs(after) >= 2*math.Abs(before) && math.Abs(before)+math.Abs(after) > 2.0 {
			tp := TurningPoint{
				Timestamp: points[i].Timestamp,
				Magnitude: math.Abs(after),
				Factors:   []string{fmt.Sprintf("rate of change accelerated %.1fx", math.Abs(after)/math.Abs(before))},
			}
			switch {
			case after > 0 && points[i].MoodScore < 5:
				tp.Type = TurningBreakthrough
				tp.Description = "sharp upward acceleration from a low state"
			case after > 0:
				tp.Type = TurningRealization
				tp.Description = "sharp upward acceleration"
			default:
				tp.Type = TurningSetback
				tp.Description = "sharp downward acceleration"
			}
			found = append(found, tp)
		}
	}

	return mergeTurningPoints(found, time.Duration(p.TurningPointMergeWindowMinutes)*time.Minute)
}

// mergeTurningPoints coalesces same-type neighbors inside the window.
func mergeTurningPoints(points []TurningPoint, window time.Duration) []TurningPoint {
	if len(points) < 2 {
		return points
	}
	out := []TurningPoint{points[0]}
	for _, tp := range points[1:] {
		last := &out[len(out)-1]
		if tp.Type == last.Type && tp.Timestamp.Sub(last.Timestamp) <= window {
			if tp.Magnitude > last.Magnitude {
				last.Magnitude = tp.Magnitude
			}
			last.Factors = append(last.Factors, tp.Factors...)
			continue
		}
		out = append(out, tp)
	}
	return out
}

// PlateauResult reports a stretch of near-constant mood.
type PlateauResult struct {
	IsPlateau bool          `json:"is_plateau"`
	Variance  float64       `json:"variance"`
	Duration  time.Duration `json:"duration"`
}

// DetectEmotionalPlateau: at least 3 points with population variance below the
// configured threshold.
func (d *DeltaDetector) DetectEmotionalPlateau(points []TrajectoryPoint) PlateauResult {
	if len(points) < 3 {
		return PlateauResult{}
	}
	scores := make([]float64, len(points))
	for i, pt := range points {
		scores[i] = pt.MoodScore
	}
	variance := populationVariance(scores)
	return PlateauResult{
		IsPlateau: variance < d.params.Snapshot().PlateauVarianceThreshold,
		Variance:  variance,
		Duration:  points[len(points)-1].Timestamp.Sub(points[0].Timestamp),
	}
}

// CalculateMoodVelocity returns score points per hour between the first and
// last point, optionally restricted to a trailing window (zero = all points).
func (d *DeltaDetector) CalculateMoodVelocity(points []TrajectoryPoint, window time.Duration) float64 {
	if len(points) < 2 {
		return 0
	}
	use := points
	if window > 0 {
		cutoff := points[len(points)-1].Timestamp.Add(-window)
		start := 0
		for i, pt := range points {
			if !pt.Timestamp.Before(cutoff) {
				start = i
				break
			}
		}
		use = points[start:]
		if len(use) < 2 {
			return 0
		}
	}
	hours := use[len(use)-1].Timestamp.Sub(use[0].Timestamp).Hours()
	if hours <= 0 {
		return 0
	}
	return (use[len(use)-1].MoodScore - use[0].MoodScore) / hours
}

// Transition describes one consecutive-pair move of at least 2.0 points.
type Transition struct {
	From     TrajectoryPoint `json:"from"`
	To       TrajectoryPoint `json:"to"`
	Velocity float64         `json:"velocity"` // score points per hour, signed
	Kind     string          `json:"kind"`     // sudden | gradual | recovery | decline
}

// DetectSuddenTransitions scans consecutive pairs. Moves of 2.0+ points are
// classified by velocity (sudden above the configured points/hour) and by the
// surrounding 3-point window (a low point followed by 2.0+ net recovery, or a
// high point followed by 2.0+ net decline).
func (d *DeltaDetector) DetectSuddenTransitions(points []TrajectoryPoint) []Transition {
	if len(points) < 2 {
		return nil
	}
	threshold := d.params.Snapshot().SuddenVelocityThreshold
	var out []Transition

	for i := 1; i < len(points); i++ {
		change := points[i].MoodScore - points[i-1].MoodScore
		if math.Abs(change) < 2.0 {
			continue
		}
		hours := points[i].Timestamp.Sub(points[i-1].Timestamp).Hours()
		var velocity float64
		if hours > 0 {
			velocity = change / hours
		}
		tr := Transition{From: points[i-1], To: points[i], Velocity: velocity}

		switch {
		case i+1 < len(points) && points[i-1].MoodScore < 4 && points[i+1].MoodScore-points[i-1].MoodScore >= 2.0:
			tr.Kind = "recovery"
		case i+1 < len(points) && points[i-1].MoodScore > 6 && points[i-1].MoodScore-points[i+1].MoodScore >= 2.0:
			tr.Kind = "decline"
		case math.Abs(velocity) >= threshold:
			tr.Kind = "sudden"
		default:
			tr.Kind = "gradual"
		}
		out = append(out, tr)
	}
	return out
}
