package reviews

import "time"

// Review is one user's rating of another (as seller).
type Review struct {
	ID           string    `json:"id"`
	ReviewerID   string    `json:"reviewerId"`
	ReviewerName string    `json:"reviewerName"`
	TargetUserID string    `json:"targetUserId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewReview is the create payload.
type NewReview struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// UpdateReview carries the fields of a review edit; nil means keep the
// current value.
type UpdateReview struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment"`
}
