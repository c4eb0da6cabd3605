package http

import (
	"net/http"
	"sync/atomic"

	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/services"
	"finsmart/internal/session"
)

// authenticated returns the logged-in session. Otherwise it answers the
// request (login redirect or 401 for HTMX) and returns ok=false.
func (s *Server) authenticated(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess := s.currentSession(w, r)
	if sess.Authenticated() {
		return sess, true
	}
	if isHTMX(r) {
		UnauthorizedError().Write(w)
		return sess, false
	}
	s.setFlash(sess.ID, "Silakan login terlebih dahulu.")
	http.Redirect(w, r, screenPath(session.Login), http.StatusSeeOther)
	return sess, false
}

func (s *Server) dashboardPage(sess session.Session, flash string) pageData {
	return pageData{
		Title:      "Dashboard",
		Screen:     session.Dashboard,
		User:       sess.User,
		Flash:      flash,
		Today:      s.now().Format(core.DateLayout),
		Categories: categoryOptions(),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	page := s.dashboardPage(sess, s.takeFlash(sess.ID))
	page.Dashboard = newDashboardView(s.ledger.Dashboard(r.Context(), sess.User))
	s.render(w, r, http.StatusOK, "dashboard.html", page)
}

// handleRecordTransaction appends one transaction. HTMX callers get the
// refreshed dashboard body; plain form posts are redirected back.
func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Format permintaan tidak valid").Write(w)
		return
	}

	tx, err := parseTransaction(p, sess.User, s.now())
	var d services.Dashboard
	if err == nil {
		d, err = s.ledger.Record(ctx, tx)
	}
	if err != nil {
		log.FromContext(ctx).InfoContext(ctx, "Transaction rejected",
			log.FieldUser, sess.User, log.FieldOperation, log.OpAppend, log.FieldError, err)
		if !isHTMX(r) {
			s.setFlash(sess.ID, userMessage(err))
			http.Redirect(w, r, screenPath(session.Dashboard), http.StatusSeeOther)
			return
		}
		ErrorResponse(statusFor(err), userMessage(err)).
			TriggerErrorNotification(userMessage(err)).
			Write(w)
		return
	}
	atomic.AddInt64(&s.metrics.transactions, 1)

	if !isHTMX(r) {
		s.setFlash(sess.ID, "Transaksi berhasil disimpan!")
		http.Redirect(w, r, screenPath(session.Dashboard), http.StatusSeeOther)
		return
	}

	body, err := s.execute("dashboard_body", newDashboardView(d))
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Template execution failed",
			"template", "dashboard_body", log.FieldOperation, log.OpRender, log.FieldError, err)
		InternalServerError("Gagal menampilkan dashboard").Write(w)
		return
	}
	resp := NewHTMXResponse().
		TriggerTransactionRecorded(tx.Date.String(), d.Summary.Count).
		TriggerFormReset().
		TriggerSuccessNotification("Transaksi berhasil disimpan!")
	if d.Overspent {
		resp.TriggerOverspend()
	}
	resp.BodyHTML(body).Write(w)
}

// handleAdvice asks the AI for tips on the user's figures.
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	atomic.AddInt64(&s.metrics.adviceCalls, 1)

	text, err := s.advice.Advise(ctx, sess.User)
	if err != nil {
		atomic.AddInt64(&s.metrics.adviceErrors, 1)
		if !isHTMX(r) {
			page := s.dashboardPage(sess, "")
			page.Error = userMessage(err)
			page.Dashboard = newDashboardView(s.ledger.Dashboard(ctx, sess.User))
			s.render(w, r, statusFor(err), "dashboard.html", page)
			return
		}
		ErrorResponse(statusFor(err), userMessage(err)).Write(w)
		return
	}

	if !isHTMX(r) {
		page := s.dashboardPage(sess, "")
		page.Advice = text
		page.Dashboard = newDashboardView(s.ledger.Dashboard(ctx, sess.User))
		s.render(w, r, http.StatusOK, "dashboard.html", page)
		return
	}
	body, err := s.execute("advice", text)
	if err != nil {
		InternalServerError("Gagal menampilkan analisis").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerSuccessNotification("Analisis selesai").
		BodyHTML(body).
		Write(w)
}
