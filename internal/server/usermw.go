package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vmxio.com/pdf-quiz/internal/store"
)

const (
	cookieName     = "pq_uid"
	publicIDHeader = "X-Public-Id"

	ctxUserPublicID = "userPublicID"
	ctxUserDBID     = "userDBID"
)

// EnsureUser binds every request to an anonymous user. The id comes from the
// X-Public-Id header, then the cookie; a fresh one is issued when both are absent.
// secureCookies should be true behind HTTPS.
func EnsureUser(st *store.Store, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		pubID := c.GetHeader(publicIDHeader)
		if !validPublicID(pubID) {
			pubID, _ = c.Cookie(cookieName)
		}
		if !validPublicID(pubID) {
			pubID = uuid.New().String()
			setUserCookie(c, pubID, secureCookies)
		}

		u, err := st.EnsureUser(c.Request.Context(), pubID)
		if err != nil {
			failJSON(c, http.StatusInternalServerError, codeInternal, "user create failed")
			c.Abort()
			return
		}

		c.Header(publicIDHeader, pubID)
		c.Set(ctxUserPublicID, pubID)
		c.Set(ctxUserDBID, u.ID)
		c.Next()
	}
}

func setUserCookie(c *gin.Context, pubID string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Value:    pubID,
		Path:     "/",
		MaxAge:   365 * 24 * 3600, // 1 year
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func validPublicID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserDBID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func currentUserPtr(c *gin.Context) *uint {
	if id, ok := currentUserID(c); ok {
		return &id
	}
	return nil
}
