package model

import "time"

// CommentAuthor is the snapshot of the user attached to a question,
// answer, review or reply at the time it was written. Denormalized on
// purpose: the aggregate stays renderable without user lookups.
type CommentAuthor struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// AuthorRef builds the author snapshot for a new comment or review.
func (u *User) AuthorRef() CommentAuthor {
	return CommentAuthor{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.Avatar.URL}
}

// Reply is a single answer to a question or a reply to a review.
type Reply struct {
	ID        string        `json:"id"`
	Author    CommentAuthor `json:"user"`
	Comment   string        `json:"comment"`
	CreatedAt time.Time     `json:"created_at"`
}

// Question is asked against one content item and collects replies.
type Question struct {
	ID        string        `json:"id"`
	Author    CommentAuthor `json:"user"`
	Text      string        `json:"question"`
	Replies   []Reply       `json:"question_replies"`
	CreatedAt time.Time     `json:"created_at"`
}

// Review is a purchaser's rating plus optional replies (e.g. from the
// course author).
type Review struct {
	ID        string        `json:"id"`
	Author    CommentAuthor `json:"user"`
	Rating    float64       `json:"rating"`
	Comment   string        `json:"comment"`
	Replies   []Reply       `json:"comment_replies,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Link is an external resource attached to a content item.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Titled is a single bullet point (benefit or prerequisite).
type Titled struct {
	Title string `json:"title"`
}

// CourseData is one lesson inside a course. VideoURL, Suggestion,
// Questions and Links are "heavy" fields stripped from the public
// projection; only purchasers see them.
type CourseData struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"video_url,omitempty"`
	VideoSection string     `json:"video_section"`
	VideoLength  int        `json:"video_length"`
	VideoPlayer  string     `json:"video_player"`
	Links        []Link     `json:"links,omitempty"`
	Suggestion   string     `json:"suggestion,omitempty"`
	Questions    []Question `json:"questions,omitempty"`
}

// Course is the aggregate document: everything about one course lives
// in a single record that is read and written as one unit. Version is
// the optimistic-concurrency stamp checked by the repository on save.
type Course struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Price          float64      `json:"price"`
	EstimatedPrice float64      `json:"estimated_price,omitempty"`
	Thumbnail      Avatar       `json:"thumbnail"`
	Tags           string       `json:"tags"`
	Level          string       `json:"level"`
	DemoURL        string       `json:"demo_url"`
	Benefits       []Titled     `json:"benefits"`
	Prerequisites  []Titled     `json:"prerequisites"`
	Reviews        []Review     `json:"reviews"`
	CourseData     []CourseData `json:"course_data"`
	Rating         float64      `json:"rating"`
	Purchased      int          `json:"purchased"`
	Version        uint64       `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Content returns the content item with the given id, or nil.
func (c *Course) Content(contentID string) *CourseData {
	for i := range c.CourseData {
		if c.CourseData[i].ID == contentID {
			return &c.CourseData[i]
		}
	}
	return nil
}

// Question returns the question with the given id inside a content
// item, or nil.
func (cd *CourseData) Question(questionID string) *Question {
	for i := range cd.Questions {
		if cd.Questions[i].ID == questionID {
			return &cd.Questions[i]
		}
	}
	return nil
}

// Review returns the review with the given id, or nil.
func (c *Course) Review(reviewID string) *Review {
	for i := range c.Reviews {
		if c.Reviews[i].ID == reviewID {
			return &c.Reviews[i]
		}
	}
	return nil
}

// RecomputeRating sets Rating to the arithmetic mean of all review
// ratings. Always recomputed from the full list so the stored value
// cannot drift through incremental updates.
func (c *Course) RecomputeRating() {
	if len(c.Reviews) == 0 {
		c.Rating = 0
		return
	}
	var sum float64
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	c.Rating = sum / float64(len(c.Reviews))
}

// Projected returns a copy of the course with the heavy per-lesson
// fields (video URL, suggestion, questions, links) removed. This is
// the shape served to unauthenticated browse endpoints.
func (c Course) Projected() Course {
	data := make([]CourseData, len(c.CourseData))
	for i, cd := range c.CourseData {
		cd.VideoURL = ""
		cd.Suggestion = ""
		cd.Questions = nil
		cd.Links = nil
		data[i] = cd
	}
	c.CourseData = data
	return c
}
