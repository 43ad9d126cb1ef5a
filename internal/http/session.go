package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"bankist/internal/bank"
	"bankist/internal/cache"
)

const sessionCookieName = "bankist_session"

// maxSessions bounds the session cache; the least recently used
// browser session is dropped first.
const maxSessions = 10000

// webSession is one browser tab's state: the bank session plus the
// presenter that plays the role of the page.
type webSession struct {
	ID string

	mu        sync.Mutex
	state     bank.Session
	presenter *HTMLPresenter

	// accountID mirrors state.CurrentID for readers that must not take mu.
	accountID atomic.Value
}

func newWebSession(id string) *webSession {
	ws := &webSession{ID: id, presenter: NewHTMLPresenter()}
	ws.accountID.Store("")
	return ws
}

// setState must be called with mu held.
func (ws *webSession) setState(s bank.Session) {
	ws.state = s
	ws.accountID.Store(s.CurrentID)
}

func (ws *webSession) AccountID() string {
	return ws.accountID.Load().(string)
}

// sessionStore keeps sessions server-side and hands the browser a signed
// token holding only the session id.
type sessionStore struct {
	sessions *cache.LRUCache[*webSession]
	secret   []byte
	now      func() time.Time
}

func newSessionStore(secret string, ttl time.Duration, logger *slog.Logger) *sessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	dropped := func(id string, ws *webSession) {
		logger.Debug("Session dropped", "session_id", id, "account_id", ws.AccountID())
	}
	return &sessionStore{
		sessions: cache.NewLRUCache[*webSession](maxSessions, ttl,
			cache.WithSlidingExpiry[*webSession](),
			cache.WithEvictHook(dropped)),
		secret: []byte(secret),
		now:    time.Now,
	}
}

var errInvalidToken = errors.New("invalid session token")

func (st *sessionStore) sign(id string) (string, error) {
	claims := jwt.StandardClaims{
		Id:       id,
		IssuedAt: st.now().Unix(),
		Issuer:   "bankist",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(st.secret)
}

func (st *sessionStore) parse(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return st.secret, nil
	})
	if err != nil || !token.Valid || claims.Id == "" {
		return "", errInvalidToken
	}
	return claims.Id, nil
}

// Lookup returns the live session referenced by the request cookie.
func (st *sessionStore) Lookup(r *http.Request) (*webSession, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, false
	}
	id, err := st.parse(c.Value)
	if err != nil {
		return nil, false
	}
	return st.sessions.Get(id)
}

// Ensure returns the request's session, starting a fresh one when the
// cookie is missing, forged or expired.
func (st *sessionStore) Ensure(w http.ResponseWriter, r *http.Request) (*webSession, error) {
	if ws, ok := st.Lookup(r); ok {
		return ws, nil
	}

	ws := newWebSession(uuid.NewString())
	token, err := st.sign(ws.ID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	st.sessions.Set(ws.ID, ws)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return ws, nil
}

func (st *sessionStore) Size() int {
	return st.sessions.Size()
}
