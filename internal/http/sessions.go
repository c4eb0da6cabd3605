package http

import (
	"errors"
	"net/http"

	"finsmart/internal/log"
	"finsmart/internal/session"
)

var screenPaths = map[session.State]string{
	session.Home:      "/",
	session.Login:     "/login",
	session.Signup:    "/signup",
	session.Dashboard: "/dashboard",
	session.Reviews:   "/reviews",
}

func screenPath(st session.State) string {
	if p, ok := screenPaths[st]; ok {
		return p
	}
	return "/"
}

// currentSession returns the browser's session, starting one (and setting
// the cookie) when the cookie is missing or the session expired.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) session.Session {
	var id string
	if c, err := r.Cookie(session.CookieName); err == nil {
		id = c.Value
	}
	sess := s.sessions.Resume(id)
	if sess.ID != id {
		s.setSessionCookie(w, sess.ID)
	}
	return sess
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// enter moves the session to screen `to` and takes its pending flash. A
// logged-in user is kept on the dashboard; any other illegal move sends the
// browser back to the screen it is on. ok=false means a redirect was written.
func (s *Server) enter(w http.ResponseWriter, r *http.Request, to session.State) (sess session.Session, flash string, ok bool) {
	sess = s.currentSession(w, r)
	if sess.Authenticated() && to != session.Dashboard {
		redirect(w, r, screenPath(session.Dashboard))
		return sess, "", false
	}

	updated, err := s.sessions.Update(sess.ID, func(cur *session.Session) error {
		if err := cur.Transition(to); err != nil {
			return err
		}
		flash = cur.TakeFlash()
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrIllegalTransition) {
			log.FromContext(r.Context()).DebugContext(r.Context(), "Screen change refused",
				log.FieldSessionID, sess.ID, log.FieldState, sess.State.String(), log.FieldError, err)
		}
		redirect(w, r, screenPath(updated.State))
		return updated, "", false
	}
	return updated, flash, true
}

// takeFlash clears and returns the pending flash without changing screens.
func (s *Server) takeFlash(id string) string {
	var flash string
	_, _ = s.sessions.Update(id, func(cur *session.Session) error {
		flash = cur.TakeFlash()
		return nil
	})
	return flash
}

// setFlash stores a message for the next render.
func (s *Server) setFlash(id, msg string) {
	_, _ = s.sessions.Update(id, func(cur *session.Session) error {
		cur.Flash = msg
		return nil
	})
}

// redirect sends a 303 for plain requests and HX-Redirect for HTMX ones.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(url).Write(w)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
