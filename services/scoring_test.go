package services

import "testing"

func TestScorePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exercise string
		reps     int
		weightKg float64
		streak   int
		want     int64
	}{
		{
			// 10×1.2 base + round(0.1×80) weight + 4×3 streak
			name:     "weighted bench press with streak",
			exercise: "bench_press",
			reps:     10,
			weightKg: 80,
			streak:   3,
			want:     32,
		},
		{
			name:     "bodyweight pushups no streak",
			exercise: "pushup",
			reps:     20,
			want:     20,
		},
		{
			name:     "pullup intensity multiplier",
			exercise: "pullup",
			reps:     10,
			want:     15,
		},
		{
			name:     "streak bonus caps at 50",
			exercise: "pushup",
			reps:     10,
			streak:   30,
			want:     60,
		},
		{
			name:     "streak at cap boundary",
			exercise: "pushup",
			reps:     10,
			streak:   13, // 4×13 = 52 → capped
			want:     60,
		},
		{
			name:     "minimum one point",
			exercise: "situp",
			reps:     1, // 0.8 rounds to 1
			want:     1,
		},
		{
			name:     "unknown exercise falls back to intensity 1",
			exercise: "mystery_lift",
			reps:     5,
			want:     5,
		},
		{
			name:     "negative streak contributes nothing",
			exercise: "squat",
			reps:     10,
			streak:   -3,
			want:     10,
		},
		{
			name:     "deadlift heavy single",
			exercise: "deadlift",
			reps:     1,
			weightKg: 200,
			streak:   1,
			want:     26, // round(1.5 + 20 + 4)
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScorePoints(tt.exercise, tt.reps, tt.weightKg, tt.streak)
			if got != tt.want {
				t.Errorf("ScorePoints(%s, %d, %.1f, %d) = %d, want %d",
					tt.exercise, tt.reps, tt.weightKg, tt.streak, got, tt.want)
			}
		})
	}
}

func TestScorePointsDeterministic(t *testing.T) {
	t.Parallel()

	first := ScorePoints("back_squat", 5, 120, 7)
	for i := 0; i < 100; i++ {
		if got := ScorePoints("back_squat", 5, 120, 7); got != first {
			t.Fatalf("run %d: got %d, want %d", i, got, first)
		}
	}
}
