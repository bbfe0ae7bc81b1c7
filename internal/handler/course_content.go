package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-course-platform/internal/apperror"
	"github.com/iliyamo/online-course-platform/internal/model"
	"github.com/iliyamo/online-course-platform/internal/queue"
	"github.com/iliyamo/online-course-platform/internal/repository"
)

type addQuestionReq struct {
	Question  string `json:"question"`
	CourseID  string `json:"course_id"`
	ContentID string `json:"content_id"`
}

type addAnswerReq struct {
	Answer     string `json:"answer"`
	CourseID   string `json:"course_id"`
	ContentID  string `json:"content_id"`
	QuestionID string `json:"question_id"`
}

type addReviewReq struct {
	Rating float64 `json:"rating"`
	Review string  `json:"review"`
}

type addReplyReq struct {
	Comment  string `json:"comment"`
	CourseID string `json:"course_id"`
	ReviewID string `json:"review_id"`
}

// GetCourseContent returns the full, unprojected lesson list of a
// purchased course. Non-purchasers get a 404 so course existence is
// not leaked.
func (h *CourseHandler) GetCourseContent(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	courseID := c.Param("id")
	if !user.Owns(courseID) {
		return apperror.Eligibility("you are not eligible to access this course")
	}

	course, err := h.Courses.GetByID(c.Request().Context(), courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return apperror.NotFound("course not found")
		}
		return apperror.Persistence("failed to load course", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "content": course.CourseData})
}

// AddQuestion appends a question to a content item. Any authenticated
// user may ask; there is deliberately no purchase check here.
func (h *CourseHandler) AddQuestion(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req addQuestionReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.Question == "" {
		return apperror.Validation("question is required")
	}
	if req.ContentID == "" {
		return apperror.Validation("invalid content id")
	}

	ctx := c.Request().Context()
	course, err := h.mutateCourse(ctx, req.CourseID, func(course *model.Course) error {
		content := course.Content(req.ContentID)
		if content == nil {
			return apperror.Validation("invalid content id")
		}
		content.Questions = append(content.Questions, model.Question{
			ID:        uuid.NewString(),
			Author:    user.AuthorRef(),
			Text:      req.Question,
			Replies:   []model.Reply{},
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	h.invalidateCourse(ctx, req.CourseID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// AddAnswer appends a reply to a question. When someone other than
// the asker answers, the asker is notified by mail through the
// notification queue; the mutation is already committed, so a publish
// failure is logged and never fails the request.
func (h *CourseHandler) AddAnswer(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req addAnswerReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.Answer == "" {
		return apperror.Validation("answer is required")
	}

	var asker model.CommentAuthor
	var questionText string

	ctx := c.Request().Context()
	course, err := h.mutateCourse(ctx, req.CourseID, func(course *model.Course) error {
		content := course.Content(req.ContentID)
		if content == nil {
			return apperror.Validation("invalid content id")
		}
		question := content.Question(req.QuestionID)
		if question == nil {
			return apperror.Validation("invalid question id")
		}
		question.Replies = append(question.Replies, model.Reply{
			ID:        uuid.NewString(),
			Author:    user.AuthorRef(),
			Comment:   req.Answer,
			CreatedAt: time.Now().UTC(),
		})
		asker = question.Author
		questionText = question.Text
		return nil
	})
	if err != nil {
		return err
	}
	h.invalidateCourse(ctx, req.CourseID)

	if asker.ID != user.ID && asker.Email != "" {
		ev := queue.EmailNotificationEvent{
			Kind:           queue.EventAnswerAdded,
			RecipientID:    asker.ID,
			RecipientName:  asker.Name,
			RecipientEmail: asker.Email,
			CourseID:       course.ID,
			CourseName:     course.Name,
			Question:       questionText,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Notify.PublishEmailNotification(ctx, ev); err != nil {
			log.Printf("answer notification for course %s not enqueued: %v", course.ID, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// AddReview lets a purchaser rate a course. The course rating is
// recomputed as the mean over all reviews on every call.
func (h *CourseHandler) AddReview(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	courseID := c.Param("id")
	if !user.Owns(courseID) {
		return apperror.Eligibility("you are not eligible to review this course")
	}
	var req addReviewReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return apperror.Validation("rating must be between 1 and 5")
	}

	ctx := c.Request().Context()
	course, err := h.mutateCourse(ctx, courseID, func(course *model.Course) error {
		course.Reviews = append(course.Reviews, model.Review{
			ID:        uuid.NewString(),
			Author:    user.AuthorRef(),
			Rating:    req.Rating,
			Comment:   req.Review,
			Replies:   []model.Reply{},
			CreatedAt: time.Now().UTC(),
		})
		course.RecomputeRating()
		return nil
	})
	if err != nil {
		return err
	}
	h.invalidateCourse(ctx, courseID)

	if h.AdminEmail != "" {
		ev := queue.EmailNotificationEvent{
			Kind:           queue.EventReviewAdded,
			RecipientName:  "admin",
			RecipientEmail: h.AdminEmail,
			CourseID:       course.ID,
			CourseName:     course.Name,
			Rating:         req.Rating,
			CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Notify.PublishEmailNotification(ctx, ev); err != nil {
			log.Printf("review notification for course %s not enqueued: %v", course.ID, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}

// AddReplyToReview appends a reply to a review. The reply list is
// created lazily for reviews stored before replies existed. Unlike
// AddReview there is no purchase check.
func (h *CourseHandler) AddReplyToReview(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req addReplyReq
	if err := c.Bind(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if req.Comment == "" {
		return apperror.Validation("comment is required")
	}

	ctx := c.Request().Context()
	course, err := h.mutateCourse(ctx, req.CourseID, func(course *model.Course) error {
		review := course.Review(req.ReviewID)
		if review == nil {
			return apperror.Validation("invalid review id")
		}
		if review.Replies == nil {
			review.Replies = []model.Reply{}
		}
		review.Replies = append(review.Replies, model.Reply{
			ID:        uuid.NewString(),
			Author:    user.AuthorRef(),
			Comment:   req.Comment,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	h.invalidateCourse(ctx, req.CourseID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "course": course})
}
