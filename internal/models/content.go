// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Privacy controls who can see a group.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyLimited Privacy = "limited"
	PrivacyPrivate Privacy = "private"
)

// Valid reports whether p is a known privacy type.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyLimited, PrivacyPrivate:
		return true
	}
	return false
}

// Group is a community addressed publicly by its slug.
type Group struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64      `db:"id" json:"-"`
	Slug        string     `db:"slug" json:"slug"`
	Name        string     `db:"name" json:"name"`
	Privacy     Privacy    `db:"privacy" json:"privacy"`
	Description string     `db:"description" json:"description"`
	CreatorID   int64      `db:"creator_id" json:"creator_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

// MemberStatus is the state of a group membership.
type MemberStatus string

const (
	MemberRequest  MemberStatus = "request"
	MemberRejected MemberStatus = "rejected"
	MemberApproved MemberStatus = "approved"
	MemberLeft     MemberStatus = "left"
	MemberRemoved  MemberStatus = "removed"
)

// Valid reports whether s is a known membership status.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberRequest, MemberRejected, MemberApproved, MemberLeft, MemberRemoved:
		return true
	}
	return false
}

// GroupMember links an account to a group.
type GroupMember struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64        `db:"id" json:"-"`
	GroupID   int64        `db:"group_id" json:"-"`
	AccountID int64        `db:"account_id" json:"account_id"`
	Status    MemberStatus `db:"status" json:"status"`
	JoinedAt  *time.Time   `db:"joined_at" json:"joined_at,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// Post is a piece of user content, optionally inside a group.
type Post struct { //nolint:govet // fieldalignment: readability over optimization
	ID                  int64      `db:"id" json:"-"`
	Slug                string     `db:"slug" json:"slug"`
	Content             string     `db:"content" json:"content"`
	CommentAvailability bool       `db:"comment_availability" json:"comment_availability"`
	AuthorID            int64      `db:"author_id" json:"author_id"`
	GroupID             *int64     `db:"group_id" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at" json:"-"`
	Hashtags            []string   `db:"-" json:"hashtags"`
}

// PostFilter narrows a paged post listing. Empty fields do not filter.
type PostFilter struct {
	Tags    []string
	Author  string
	Group   string
	Keyword string
	Page    int
	Limit   int
	// ViewerID is 0 for anonymous listings.
	ViewerID int64
}

// PostPage is one page of a post listing.
type PostPage struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int64  `json:"total"`
	Posts []Post `json:"posts"`
}

// Comment is a reply to a post, optionally to another comment on it.
type Comment struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64      `db:"id" json:"id"`
	PostID    int64      `db:"post_id" json:"-"`
	AuthorID  int64      `db:"author_id" json:"author_id"`
	ReplyID   *int64     `db:"reply_id" json:"reply_id,omitempty"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// ReactionType is the kind of a reaction.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ReactionTypes lists the known reaction types.
var ReactionTypes = []ReactionType{ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry}

// Valid reports whether r is a known reaction type.
func (r ReactionType) Valid() bool {
	for _, t := range ReactionTypes {
		if r == t {
			return true
		}
	}
	return false
}

// Reaction is one account's reaction to a post or a comment.
type Reaction struct {
	ID        int64        `db:"id" json:"-"`
	TargetID  int64        `db:"target_id" json:"-"`
	AccountID int64        `db:"account_id" json:"account_id"`
	Type      ReactionType `db:"type" json:"type"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}
