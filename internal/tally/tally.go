// Package tally aggregates yes/no votes into counts and display percentages.
package tally

import (
	"fmt"
	"math"
	"strings"
)

// Choice is a single yes/no vote.
type Choice string

const (
	Yes Choice = "yes"
	No  Choice = "no"
)

// ParseChoice accepts yes/no in any case, plus the boolean spellings the
// mobile client sends.
func ParseChoice(raw string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "hot":
		return Yes, nil
	case "no", "false", "flop":
		return No, nil
	}
	return "", fmt.Errorf("unknown vote choice %q", raw)
}

// Counts is the running tally of a post.
type Counts struct {
	Yes   int64 `json:"yes"`
	No    int64 `json:"no"`
	Total int64 `json:"total"`
}

// Sanitize clamps negatives to zero and recomputes Total.
func (c Counts) Sanitize() Counts {
	if c.Yes < 0 {
		c.Yes = 0
	}
	if c.No < 0 {
		c.No = 0
	}
	c.Total = c.Yes + c.No
	return c
}

// Apply adds one vote. The input is sanitized first so the result always
// satisfies Total == Yes + No.
func Apply(c Counts, choice Choice) (Counts, error) {
	c = c.Sanitize()
	switch choice {
	case Yes:
		c.Yes++
	case No:
		c.No++
	default:
		return c, fmt.Errorf("unknown vote choice %q", choice)
	}
	c.Total = c.Yes + c.No
	return c, nil
}

// Delta returns the increment a single vote contributes.
func Delta(choice Choice) (Counts, error) {
	return Apply(Counts{}, choice)
}

// Reduce rebuilds counts from a vote log. Unknown choices are skipped.
func Reduce(choices []Choice) Counts {
	var c Counts
	for _, choice := range choices {
		if next, err := Apply(c, choice); err == nil {
			c = next
		}
	}
	return c
}

// Percent returns round(n/total*100), or 0 when total is 0.
func Percent(n, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// Result is a tally ready for display.
type Result struct {
	Counts
	YesPercent int `json:"yes_percent"`
	NoPercent  int `json:"no_percent"`
}

// Summarize computes display percentages.
func Summarize(c Counts) Result {
	c = c.Sanitize()
	return Result{
		Counts:     c,
		YesPercent: Percent(c.Yes, c.Total),
		NoPercent:  Percent(c.No, c.Total),
	}
}
