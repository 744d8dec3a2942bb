package historycsv

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// sessionHeaderRe matches: "Push Day";"2026-02-19 16:54";"1:02:35"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)";"(\d+):(\d{2}):(\d{2})"$`)

	// exerciseHeaderRe matches: "1. Bench Press" or "2. Lat Pulldown · Cable"
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?"$`)

	// setDataRe matches: 1;102,5;8;8,5
	setDataRe = regexp.MustCompile(`^(\d+);(.*);(\d+);(.*)$`)

	// columnHeaderRe matches: #;WEIGHT;REPS;RPE
	columnHeaderRe = regexp.MustCompile(`^#;WEIGHT;REPS;RPE$`)
)

// Session is one parsed workout from a history export.
type Session struct {
	Name        string
	Date        time.Time
	DurationSec int
	Exercises   []SessionExercise
}

// SessionExercise groups the parsed sets of one exercise within a session.
type SessionExercise struct {
	Number    int
	Name      string
	Equipment string
	Sets      []SessionSet
}

// SessionSet is one parsed set line.
type SessionSet struct {
	Number int
	Weight *float64
	Reps   *int
	RPE    *float64
}

// Parse reads a semicolon-separated workout history export and returns the
// parsed sessions. Blank lines separate sessions; unrecognized lines are
// skipped.
func Parse(r io.Reader) ([]Session, error) {
	scanner := bufio.NewScanner(r)
	var sessions []Session
	var current *Session
	var currentExercise *SessionExercise

	flushExercise := func() {
		if currentExercise != nil {
			current.Exercises = append(current.Exercises, *currentExercise)
			currentExercise = nil
		}
	}
	flushSession := func() {
		if current != nil {
			flushExercise()
			sessions = append(sessions, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			flushSession()
			continue
		}
		if columnHeaderRe.MatchString(line) {
			continue
		}

		if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
			flushSession()
			date, err := parseSessionDate(m[2])
			if err != nil {
				return nil, fmt.Errorf("parsing session date %q: %w", m[2], err)
			}
			h, _ := strconv.Atoi(m[3])
			min, _ := strconv.Atoi(m[4])
			sec, _ := strconv.Atoi(m[5])
			current = &Session{
				Name:        m[1],
				Date:        date,
				DurationSec: h*3600 + min*60 + sec,
			}
			continue
		}

		if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, fmt.Errorf("exercise without session: %q", line)
			}
			flushExercise()
			num, _ := strconv.Atoi(m[1])
			currentExercise = &SessionExercise{
				Number:    num,
				Name:      strings.TrimSpace(m[2]),
				Equipment: strings.TrimSpace(m[3]),
			}
			continue
		}

		if m := setDataRe.FindStringSubmatch(line); m != nil {
			if currentExercise == nil {
				return nil, fmt.Errorf("set data without exercise: %q", line)
			}
			num, _ := strconv.Atoi(m[1])
			reps, _ := strconv.Atoi(m[3])
			currentExercise.Sets = append(currentExercise.Sets, SessionSet{
				Number: num,
				Weight: parseOptionalFloat(m[2]),
				Reps:   &reps,
				RPE:    parseOptionalFloat(m[4]),
			})
			continue
		}

		// Unknown line, likely notes or export metadata.
	}

	flushSession()
	return sessions, scanner.Err()
}

// parseSessionDate parses "2026-02-19 16:54" into a time.Time.
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// parseOptionalFloat converts a possibly empty European decimal string.
// "102,5" -> 102.5, "" -> nil.
func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
