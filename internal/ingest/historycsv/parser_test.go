package historycsv

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `
"Push Day";"2026-02-19 16:54";"1:02:35"
"1. Bench Press · Barbell"
#;WEIGHT;REPS;RPE
1;102,5;6;9
2;102,5;6;9,5
3;100;6;10
"2. Overhead Press"
#;WEIGHT;REPS;RPE
1;60;8;8
2;60;8;8,5
"3. Cable Fly · Cable"
#;WEIGHT;REPS;RPE
1;25;12;
2;25;12;

"Pull Day";"2026-02-21 7:15";"0:58:10"
"1. Deadlift · Barbell"
#;WEIGHT;REPS;RPE
1;180;5;9
2;180;5;9,5
`

// TestParseCompleteSessions verifies parsing a multi-session export with
// exercises and sets. This is the primary happy-path test for the parser.
func TestParseCompleteSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	s1 := sessions[0]
	if s1.Name != "Push Day" {
		t.Errorf("s1.Name = %q", s1.Name)
	}
	wantDate := time.Date(2026, 2, 19, 16, 54, 0, 0, time.UTC)
	if !s1.Date.Equal(wantDate) {
		t.Errorf("s1.Date = %v, want %v", s1.Date, wantDate)
	}
	if s1.DurationSec != 1*3600+2*60+35 {
		t.Errorf("s1.DurationSec = %d, want 3755", s1.DurationSec)
	}
	if len(s1.Exercises) != 3 {
		t.Fatalf("s1 exercises = %d, want 3", len(s1.Exercises))
	}

	ex1 := s1.Exercises[0]
	if ex1.Name != "Bench Press" {
		t.Errorf("ex1.Name = %q, want Bench Press", ex1.Name)
	}
	if ex1.Equipment != "Barbell" {
		t.Errorf("ex1.Equipment = %q, want Barbell", ex1.Equipment)
	}
	if len(ex1.Sets) != 3 {
		t.Fatalf("ex1 sets = %d, want 3", len(ex1.Sets))
	}
	if ex1.Sets[0].Weight == nil || *ex1.Sets[0].Weight != 102.5 {
		t.Errorf("ex1 set1 weight = %v, want 102.5", ex1.Sets[0].Weight)
	}
	if ex1.Sets[1].RPE == nil || *ex1.Sets[1].RPE != 9.5 {
		t.Errorf("ex1 set2 rpe = %v, want 9.5", ex1.Sets[1].RPE)
	}

	// Exercise 2 has no equipment field.
	ex2 := s1.Exercises[1]
	if ex2.Name != "Overhead Press" {
		t.Errorf("ex2.Name = %q, want Overhead Press", ex2.Name)
	}
	if ex2.Equipment != "" {
		t.Errorf("ex2.Equipment = %q, want empty", ex2.Equipment)
	}

	// Exercise 3 has empty RPE cells.
	ex3 := s1.Exercises[2]
	if len(ex3.Sets) != 2 {
		t.Fatalf("ex3 sets = %d, want 2", len(ex3.Sets))
	}
	if ex3.Sets[0].RPE != nil {
		t.Errorf("ex3 set1 rpe = %v, want nil", *ex3.Sets[0].RPE)
	}

	// Second session: single-digit hour in the date.
	s2 := sessions[1]
	if s2.Name != "Pull Day" {
		t.Errorf("s2.Name = %q", s2.Name)
	}
	if s2.Date.Hour() != 7 || s2.Date.Minute() != 15 {
		t.Errorf("s2.Date = %v, want 07:15", s2.Date)
	}
	if s2.DurationSec != 58*60+10 {
		t.Errorf("s2.DurationSec = %d, want 3490", s2.DurationSec)
	}
	if len(s2.Exercises) != 1 || len(s2.Exercises[0].Sets) != 2 {
		t.Errorf("s2 shape = %d exercises", len(s2.Exercises))
	}
}

// TestEuropeanDecimal verifies comma decimal separators ("102,5" = 102.5).
func TestEuropeanDecimal(t *testing.T) {
	got := parseOptionalFloat("102,5")
	if got == nil || *got != 102.5 {
		t.Errorf("parseOptionalFloat(102,5) = %v, want 102.5", got)
	}
}

// TestEmptyCell verifies that blank weight/RPE cells parse as nil.
func TestEmptyCell(t *testing.T) {
	if got := parseOptionalFloat(""); got != nil {
		t.Errorf("parseOptionalFloat(\"\") = %v, want nil", *got)
	}
	if got := parseOptionalFloat("  "); got != nil {
		t.Errorf("parseOptionalFloat(blank) = %v, want nil", *got)
	}
}

// TestSetWithoutExercise verifies that a set line before any exercise header
// is a parse error.
func TestSetWithoutExercise(t *testing.T) {
	input := `"Push Day";"2026-02-19 16:54";"1:02:35"
1;100;5;9
`
	if _, err := Parse(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for set data without exercise")
	}
}

// TestExerciseWithoutSession verifies that an exercise header before any
// session header is a parse error.
func TestExerciseWithoutSession(t *testing.T) {
	input := `"1. Bench Press · Barbell"
`
	if _, err := Parse(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for exercise without session")
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

// TestUnknownLinesSkipped verifies that unrecognized lines between records do
// not break parsing.
func TestUnknownLinesSkipped(t *testing.T) {
	input := `"Push Day";"2026-02-19 16:54";"1:02:35"
exported by liftlog v2
"1. Bench Press · Barbell"
#;WEIGHT;REPS;RPE
1;100;5;9
`
	sessions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 1 || len(sessions[0].Exercises) != 1 {
		t.Fatalf("unexpected shape: %+v", sessions)
	}
	if len(sessions[0].Exercises[0].Sets) != 1 {
		t.Errorf("sets = %d, want 1", len(sessions[0].Exercises[0].Sets))
	}
}
