// Package session wraps gin session access for the logged-in user id and
// per-session preference flags.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUserId  = "LOGIN_USER_ID"
	showFollowed = "SHOW_FOLLOWED"
)

// SetLoginUser records the user id of the authenticated user.
func SetLoginUser(c *gin.Context, userId int) error {
	s := sessions.Default(c)
	s.Set(loginUserId, userId)
	return s.Save()
}

// GetLoginUserId returns the authenticated user id, or 0 when anonymous.
func GetLoginUserId(c *gin.Context) int {
	s := sessions.Default(c)
	if obj := s.Get(loginUserId); obj != nil {
		if id, ok := obj.(int); ok {
			return id
		}
	}
	return 0
}

// IsLogin reports whether the session belongs to an authenticated user.
func IsLogin(c *gin.Context) bool {
	return GetLoginUserId(c) > 0
}

// SetShowFollowed stores the feed filter preference: true limits the home
// feed to followed artists.
func SetShowFollowed(c *gin.Context, enabled bool) error {
	s := sessions.Default(c)
	s.Set(showFollowed, enabled)
	return s.Save()
}

// ShowFollowed returns the feed filter preference, defaulting to everyone.
func ShowFollowed(c *gin.Context) bool {
	s := sessions.Default(c)
	if obj := s.Get(showFollowed); obj != nil {
		if v, ok := obj.(bool); ok {
			return v
		}
	}
	return false
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: maxAge,
	})
	return s.Save()
}

// ClearSession drops the session state on logout.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}
