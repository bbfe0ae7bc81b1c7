// Package queue defines the notification events exchanged over the
// message broker and the background consumer that delivers them as
// email. Mutations commit first; notification delivery happens out of
// band so a mail failure can never fail a request whose primary write
// already succeeded.
package queue

// EventKind names the notification types.
const (
	EventAnswerAdded = "answer.added"
	EventReviewAdded = "review.added"
)

// EmailNotificationEvent is published after a course mutation that
// should notify someone. It carries everything the consumer needs so
// no database lookup happens on the delivery path.
type EmailNotificationEvent struct {
	Kind           string  `json:"kind"`
	RecipientID    uint64  `json:"recipient_id"`
	RecipientName  string  `json:"recipient_name"`
	RecipientEmail string  `json:"recipient_email"`
	CourseID       string  `json:"course_id"`
	CourseName     string  `json:"course_name"`
	Question       string  `json:"question,omitempty"`
	Rating         float64 `json:"rating,omitempty"`
	CreatedAt      string  `json:"created_at"`
}
