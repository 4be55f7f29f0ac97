package store

import (
	"slices"

	"github.com/google/uuid"

	"cinescope/internal/models"
	"cinescope/internal/timeutil"
)

func newReviewID() models.ReviewID {
	id, err := uuid.NewV7()
	if err != nil {
		return models.ReviewID(uuid.NewString())
	}
	return models.ReviewID(id.String())
}

// AddReview records a review for contentID and returns it. The id and date
// are assigned here; the rating is coerced into [0, 10] and a blank name
// becomes "Anonymous". Newest reviews come first.
func (s *Store) AddReview(contentID int, in models.ReviewInput) models.Review {
	review := models.Review{
		ID:         newReviewID(),
		AuthorName: in.AuthorOrDefault(),
		Rating:     models.CoerceRating(in.Rating),
		Text:       in.Text,
		CreatedAt:  timeutil.Now(),
	}
	s.mutate(func() bool {
		s.reviews[contentID] = append([]models.Review{review}, s.reviews[contentID]...)
		return true
	}, SliceReviews)
	return review
}

// Reviews returns the reviews for contentID, newest first. Never nil.
func (s *Store) Reviews(contentID int) []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := slices.Clone(s.reviews[contentID])
	if list == nil {
		list = []models.Review{}
	}
	return list
}

func (s *Store) ReviewCount(contentID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews[contentID])
}

// AverageRating returns the mean rating rounded to one decimal. ok is false
// when there are no reviews, which is distinct from an average of 0.
func (s *Store) AverageRating(contentID int) (avg float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.reviews[contentID]
	if len(list) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range list {
		sum += r.Rating
	}
	return models.RoundRating(sum / float64(len(list))), true
}
