package http

import (
	"net/http"
	"sync/atomic"

	"finsmart/internal/log"
	"finsmart/internal/session"
)

func (s *Server) reviewsPage(r *http.Request, flash string) pageData {
	return pageData{
		Title:   "Ulasan Pengguna",
		Screen:  session.Reviews,
		Flash:   flash,
		Reviews: newReviewViews(s.reviews.List(r.Context())),
	}
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	_, flash, ok := s.enter(w, r, session.Reviews)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "reviews.html", s.reviewsPage(r, flash))
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	if sess.State != session.Reviews {
		redirect(w, r, screenPath(sess.State))
		return
	}

	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Format permintaan tidak valid").Write(w)
		return
	}

	review, err := parseReview(p)
	if err == nil {
		err = s.reviews.Submit(ctx, review)
	}
	if err != nil {
		log.FromContext(ctx).InfoContext(ctx, "Review rejected", log.FieldError, err)
		page := s.reviewsPage(r, "")
		page.Error = userMessage(err)
		page.Form = map[string]string{
			"name":   p.Get("name"),
			"email":  p.Get("email"),
			"rating": p.Get("rating"),
			"text":   p.Get("text"),
		}
		s.render(w, r, statusFor(err), "reviews.html", page)
		return
	}

	atomic.AddInt64(&s.metrics.reviews, 1)
	s.setFlash(sess.ID, "Terima kasih atas ulasan Anda!")
	redirect(w, r, screenPath(session.Reviews))
}
