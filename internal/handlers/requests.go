// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"codeberg.org/oliverandrich/langeng/internal/models"
)

const dateLayout = "2006-01-02"

var (
	codePattern  = regexp.MustCompile(`^[0-9]{6}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ]{6,20}$`)
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Fullname, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// VerifyCodeRequest is the body of PATCH /auth/verify.
type VerifyCodeRequest struct {
	Code string `json:"code"`
	Type int    `json:"type"`
}

func (r VerifyCodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Match(codePattern)),
		validation.Field(&r.Type, validation.Required, validation.Min(1), validation.Max(255)),
	)
}

// VerificationRequest is the body of POST /auth/verify.
type VerificationRequest struct {
	Type    int    `json:"type"`
	Channel string `json:"channel"`
}

func (r VerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.Min(1), validation.Max(255)),
		validation.Field(&r.Channel, validation.In(string(models.ChannelCode), string(models.ChannelLink))),
	)
}

// ProfileRequest is the body of PUT /users/profile.
type ProfileRequest struct {
	Bio         string `json:"bio"`
	PhoneNumber string `json:"phone_number"`
	CityBorn    string `json:"city_born"`
	CityHome    string `json:"city_home"`
	BirthDate   string `json:"birth_date"`
}

func (r ProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Bio, validation.Length(0, 500)),
		validation.Field(&r.PhoneNumber, validation.Match(phonePattern)),
		validation.Field(&r.CityBorn, validation.Length(0, 100)),
		validation.Field(&r.CityHome, validation.Length(0, 100)),
		validation.Field(&r.BirthDate, validation.Date(dateLayout)),
	)
}

// birthDate returns the parsed birth date, or nil when unset.
func (r ProfileRequest) birthDate() *time.Time {
	if r.BirthDate == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, r.BirthDate)
	if err != nil {
		return nil
	}
	return &t
}

// CreateGroupRequest is the body of POST /groups.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Privacy     string `json:"privacy"`
	Description string `json:"description"`
}

func (r CreateGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Privacy, validation.In(
			string(models.PrivacyPublic), string(models.PrivacyLimited), string(models.PrivacyPrivate))),
		validation.Field(&r.Description, validation.Length(0, 1000)),
	)
}

// UpdateMemberRequest is the body of PATCH /groups/:slug/join.
type UpdateMemberRequest struct {
	MemberID int64  `json:"member_id"`
	Status   string `json:"status"`
}

func (r UpdateMemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MemberID, validation.Required),
		validation.Field(&r.Status, validation.Required, validation.In(
			string(models.MemberRequest), string(models.MemberRejected), string(models.MemberApproved),
			string(models.MemberLeft), string(models.MemberRemoved))),
	)
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Content             string `json:"content"`
	CommentAvailability *bool  `json:"comment_availability"`
	Group               string `json:"group"`
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 5000)),
	)
}

// commentsEnabled defaults to true when the field is omitted.
func (r CreatePostRequest) commentsEnabled() bool {
	return r.CommentAvailability == nil || *r.CommentAvailability
}

// ListPostsRequest holds the query of GET /posts. Tags is a comma-separated
// list of hashtags.
type ListPostsRequest struct {
	Tags    string `query:"tags"`
	Author  string `query:"author"`
	Group   string `query:"group"`
	Keyword string `query:"keyword"`
	Page    int    `query:"page"`
	Limit   int    `query:"limit"`
}

func (r ListPostsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Page, validation.Min(0)),
		validation.Field(&r.Limit, validation.Min(0), validation.Max(100)),
	)
}

// tags splits the tag list, dropping empty entries.
func (r ListPostsRequest) tags() []string {
	var tags []string
	for _, tag := range strings.Split(r.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CreateCommentRequest is the body of POST /comments.
type CreateCommentRequest struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
	ReplyID *int64 `json:"reply_id"`
}

func (r CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Slug, validation.Required),
		validation.Field(&r.Content, validation.Required, validation.Length(1, 2000)),
	)
}
