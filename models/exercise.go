package models

// Exercise: static catalog entry (compiled in, no DB table).
// Intensity is the per-rep multiplier used by the scoring formula.
type Exercise struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Intensity float64 `json:"intensity"`
	Weighted  bool    `json:"weighted"` // accepts a working weight in kg
}

// ExerciseCatalog: the fixed set of scoreable exercises.
var ExerciseCatalog = []Exercise{
	{Code: "pushup", Name: "Push-Up", Intensity: 1.0},
	{Code: "pullup", Name: "Pull-Up", Intensity: 1.5},
	{Code: "dip", Name: "Dip", Intensity: 1.3},
	{Code: "squat", Name: "Air Squat", Intensity: 1.0},
	{Code: "lunge", Name: "Lunge", Intensity: 1.1},
	{Code: "burpee", Name: "Burpee", Intensity: 1.4},
	{Code: "situp", Name: "Sit-Up", Intensity: 0.8},
	{Code: "bench_press", Name: "Bench Press", Intensity: 1.2, Weighted: true},
	{Code: "back_squat", Name: "Back Squat", Intensity: 1.4, Weighted: true},
	{Code: "deadlift", Name: "Deadlift", Intensity: 1.5, Weighted: true},
	{Code: "overhead_press", Name: "Overhead Press", Intensity: 1.3, Weighted: true},
	{Code: "barbell_row", Name: "Barbell Row", Intensity: 1.2, Weighted: true},
}

// FindExercise returns the catalog entry for code, or nil if unknown.
func FindExercise(code string) *Exercise {
	for i := range ExerciseCatalog {
		if ExerciseCatalog[i].Code == code {
			return &ExerciseCatalog[i]
		}
	}
	return nil
}

// IntensityFor returns the scoring multiplier for code.
// Unknown codes score at intensity 1 rather than failing the calculation.
func IntensityFor(code string) float64 {
	if ex := FindExercise(code); ex != nil {
		return ex.Intensity
	}
	return 1
}
