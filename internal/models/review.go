package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultAuthorName is used when a review is submitted without a name.
const DefaultAuthorName = "Anonymous"

// MaxRating is the top of the rating scale.
const MaxRating = 10.0

// ReviewID is an opaque, time-ordered review identifier. Older stored
// ledgers used millisecond timestamps, so numeric JSON ids are accepted too.
type ReviewID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ReviewID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ReviewID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ReviewID(n.String())
	return nil
}

// Review is a single user review attached to a content id.
type Review struct {
	ID         ReviewID  `json:"id"`
	AuthorName string    `json:"name"`
	Rating     float64   `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"date"`
}

// UnmarshalJSON coerces the stored rating the same way new submissions are.
func (r *Review) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        ReviewID  `json:"id"`
		Name      string    `json:"name"`
		Rating    any       `json:"rating"`
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"date"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Review{ID: raw.ID, AuthorName: raw.Name, Text: raw.Text, CreatedAt: raw.CreatedAt}
	r.Rating = CoerceRating(raw.Rating)
	return nil
}

// ReviewInput is what a caller submits. Rating may be any JSON scalar.
type ReviewInput struct {
	Name   string `json:"name"`
	Rating any    `json:"rating"`
	Text   string `json:"text"`
}

// AuthorOrDefault returns the trimmed name, or DefaultAuthorName when blank.
func (in ReviewInput) AuthorOrDefault() string {
	if name := strings.TrimSpace(in.Name); name != "" {
		return name
	}
	return DefaultAuthorName
}

type float64er interface {
	Float64() (float64, error)
}

// CoerceRating turns an arbitrary submitted value into a rating in
// [0, MaxRating]. Anything that is not a usable number becomes 0.
func CoerceRating(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case float64er:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Min(MaxRating, math.Max(0, f))
}

// RoundRating rounds to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
