// Package model defines the persistent entities of the ragtime platform:
// roles, users, follow edges, compositions and comments.
package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ragtime/util/htmlutil"
)

// Permission is a capability bit. Values are disjoint powers of two so the
// guarded arithmetic in AddPermission/RemovePermission behaves like bitwise
// OR / AND-NOT.
type Permission int

const (
	PermissionFollow   Permission = 1
	PermissionReview   Permission = 2
	PermissionComment  Permission = PermissionReview
	PermissionPublish  Permission = 4
	PermissionModerate Permission = 8
	PermissionAdmin    Permission = 16
)

// ReleaseType classifies a composition.
type ReleaseType int

const (
	ReleaseSingle       ReleaseType = 0
	ReleaseExtendedPlay ReleaseType = 1
	ReleaseAlbum        ReleaseType = 2
)

// Valid reports whether t is one of the known release types.
func (t ReleaseType) Valid() bool {
	return t >= ReleaseSingle && t <= ReleaseAlbum
}

// Role groups users under a named permission mask. At most one role is the
// default role assigned at registration.
type Role struct {
	Id          int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"uniqueIndex;not null"`
	IsDefault   bool       `json:"isDefault" gorm:"column:is_default;index"`
	Permissions Permission `json:"permissions"`
	Users       []User     `json:"-" gorm:"foreignKey:RoleId"`
}

// HasPermission reports whether every bit of perm is present in the mask.
func (r *Role) HasPermission(perm Permission) bool {
	return r.Permissions&perm == perm
}

// AddPermission grants perm. The membership precheck keeps the arithmetic
// addition equivalent to bitwise OR.
func (r *Role) AddPermission(perm Permission) {
	if !r.HasPermission(perm) {
		r.Permissions += perm
	}
}

// RemovePermission revokes perm if held.
func (r *Role) RemovePermission(perm Permission) {
	if r.HasPermission(perm) {
		r.Permissions -= perm
	}
}

// ResetPermissions clears the mask.
func (r *Role) ResetPermissions() {
	r.Permissions = 0
}

// User is a registered account. Every user holds exactly one role and
// follows itself (the self-follow edge is created right after insert).
type User struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Confirmed    bool      `json:"confirmed"`
	RoleId       int       `json:"-"`
	Role         *Role     `json:"-" gorm:"foreignKey:RoleId"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Bio          string    `json:"bio"`
	LastSeen     time.Time `json:"lastSeen"`
	AvatarHash   string    `json:"-" gorm:"column:avatar_hash"`

	Compositions []Composition `json:"-" gorm:"foreignKey:ArtistId"`
	Comments     []Comment     `json:"-" gorm:"foreignKey:ArtistId"`
}

// Can reports whether the user's role carries perm. A user with no loaded
// role can do nothing.
func (u *User) Can(perm Permission) bool {
	return u != nil && u.Role != nil && u.Role.HasPermission(perm)
}

// IsAdministrator reports whether the user holds the admin bit.
func (u *User) IsAdministrator() bool {
	return u.Can(PermissionAdmin)
}

// AvatarURL returns the avatar image URL derived from the email fingerprint.
func (u *User) AvatarURL(size int) string {
	return "https://unicornify.pictures/avatar/" + u.AvatarHash + "?s=" + strconv.Itoa(size)
}

// Follow is a directed edge meaning the follower receives the following
// user's content in their feed. The composite key makes edges unique per
// ordered pair; duplicate inserts are resolved by the store, not the app.
type Follow struct {
	FollowerId  int       `json:"followerId" gorm:"primaryKey;autoIncrement:false"`
	FollowingId int       `json:"followingId" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt   time.Time `json:"timestamp"`

	Follower  *User `json:"-" gorm:"foreignKey:FollowerId;constraint:OnDelete:CASCADE"`
	Following *User `json:"-" gorm:"foreignKey:FollowingId;constraint:OnDelete:CASCADE"`
}

// Composition is a published creative work.
type Composition struct {
	Id              int         `json:"id" gorm:"primaryKey;autoIncrement"`
	ReleaseType     ReleaseType `json:"releaseType" gorm:"column:release_type"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	DescriptionHTML string      `json:"descriptionHtml" gorm:"column:description_html"`
	CreatedAt       time.Time   `json:"timestamp" gorm:"index"`
	ArtistId        int         `json:"artistId"`
	Artist          *User       `json:"-" gorm:"foreignKey:ArtistId"`
	Slug            string      `json:"slug" gorm:"uniqueIndex"`

	Comments []Comment `json:"-" gorm:"foreignKey:CompositionId"`
}

// descriptionTags is the sanitizer allow-list for composition descriptions.
var descriptionTags = []string{"a"}

// SetDescription stores the raw description and synchronously recomputes the
// sanitized HTML projection: @mentions become profile links under
// profileBase, all other markup is stripped and bare URLs are linkified.
func (c *Composition) SetDescription(text, profileBase string) {
	c.Description = text
	withMentions := htmlutil.RewriteMentions(text, profileBase)
	c.DescriptionHTML = htmlutil.SanitizeAndLinkify(withMentions, descriptionTags...)
}

var slugStrip = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// GenerateSlug derives the unique slug from the id and title. It can only
// run once the composition has an id, and must be re-run whenever the title
// changes; stale slugs simply stop resolving.
func (c *Composition) GenerateSlug() {
	c.Slug = strconv.Itoa(c.Id) + "-" + slugStrip.ReplaceAllString(strings.ToLower(c.Title), "-")
}

// Comment is a user's remark on a composition. Disabled comments stay stored
// but are hidden from public thread listings.
type Comment struct {
	Id            int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Body          string    `json:"body"`
	BodyHTML      string    `json:"bodyHtml" gorm:"column:body_html"`
	CreatedAt     time.Time `json:"timestamp" gorm:"index"`
	Disabled      bool      `json:"disabled"`
	ArtistId      int       `json:"artistId"`
	Artist        *User     `json:"-" gorm:"foreignKey:ArtistId"`
	CompositionId int       `json:"compositionId"`
	Composition   *Composition `json:"-" gorm:"foreignKey:CompositionId"`
}

// SetBody stores the raw body and recomputes the sanitized HTML projection.
// Unlike descriptions, comment bodies get no mention rewriting.
func (c *Comment) SetBody(text string) {
	c.Body = text
	c.BodyHTML = htmlutil.SanitizeAndLinkify(text, descriptionTags...)
}
