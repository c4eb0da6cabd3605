package http

import (
	"net/http"
	"sync/atomic"

	"finsmart/internal/log"
	"finsmart/internal/session"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	_, flash, ok := s.enter(w, r, session.Home)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "home.html", pageData{
		Title:  "FinSmart AI",
		Screen: session.Home,
		Flash:  flash,
	})
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	_, flash, ok := s.enter(w, r, session.Signup)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "signup.html", pageData{
		Title:  "Buat Akun Baru",
		Screen: session.Signup,
		Flash:  flash,
	})
}

// handleSignup creates the account and moves the session to the login screen.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	if sess.State != session.Signup {
		redirect(w, r, screenPath(sess.State))
		return
	}

	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Format permintaan tidak valid").Write(w)
		return
	}
	form := map[string]string{"email": p.Get("email"), "budget": p.Get("budget")}

	creds, err := parseCredentials(p, true)
	if err == nil {
		err = s.accounts.Signup(ctx, creds.Email, creds.Password, creds.Budget)
	}
	if err != nil {
		log.FromContext(ctx).InfoContext(ctx, "Signup rejected",
			log.FieldOperation, log.OpSignup, log.FieldError, err)
		s.render(w, r, statusFor(err), "signup.html", pageData{
			Title:  "Buat Akun Baru",
			Screen: session.Signup,
			Error:  userMessage(err),
			Form:   form,
		})
		return
	}

	atomic.AddInt64(&s.metrics.signups, 1)
	_, _ = s.sessions.Update(sess.ID, func(cur *session.Session) error {
		if err := cur.Transition(session.Login); err != nil {
			return err
		}
		cur.Flash = "Akun berhasil dibuat! Silakan login."
		return nil
	})
	redirect(w, r, screenPath(session.Login))
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	_, flash, ok := s.enter(w, r, session.Login)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "login.html", pageData{
		Title:  "Login ke Akun",
		Screen: session.Login,
		Flash:  flash,
	})
}

// handleLogin verifies the credentials. On success the session ID is
// rotated: the old session ends and a new one starts on the dashboard.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	if sess.State != session.Login {
		redirect(w, r, screenPath(sess.State))
		return
	}

	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Format permintaan tidak valid").Write(w)
		return
	}

	creds, _ := parseCredentials(p, false)
	user, err := s.accounts.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		atomic.AddInt64(&s.metrics.loginFailures, 1)
		log.FromContext(ctx).InfoContext(ctx, "Login rejected",
			log.FieldOperation, log.OpLogin, log.FieldError, err)
		s.render(w, r, statusFor(err), "login.html", pageData{
			Title:  "Login ke Akun",
			Screen: session.Login,
			Error:  userMessage(err),
			Form:   map[string]string{"email": creds.Email},
		})
		return
	}

	fresh := s.sessions.Start()
	_, err = s.sessions.Update(fresh.ID, func(cur *session.Session) error {
		if err := cur.Transition(session.Login); err != nil {
			return err
		}
		if err := cur.LoggedIn(user.Email); err != nil {
			return err
		}
		cur.Flash = "Selamat datang, " + user.Email + "!"
		return nil
	})
	if err != nil {
		InternalServerError("Gagal memulai sesi").Write(w)
		return
	}
	s.sessions.End(sess.ID)
	s.setSessionCookie(w, fresh.ID)

	atomic.AddInt64(&s.metrics.logins, 1)
	log.FromContext(ctx).InfoContext(ctx, "User logged in",
		log.FieldUser, user.Email, log.FieldOperation, log.OpLogin)
	redirect(w, r, screenPath(session.Dashboard))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	if sess.Authenticated() {
		_, _ = s.sessions.Update(sess.ID, func(cur *session.Session) error {
			cur.Logout()
			cur.Flash = "Anda telah logout."
			return nil
		})
	}
	redirect(w, r, screenPath(session.Home))
}
