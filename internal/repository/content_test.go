// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/langeng/internal/models"
	"codeberg.org/oliverandrich/langeng/internal/repository"
	"codeberg.org/oliverandrich/langeng/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup_DuplicateSlug(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.NewTestAccount(t, repo, "alice", models.StatusVerified)

	first := &models.Group{Slug: "go-x", Name: "Go", Privacy: models.PrivacyPublic, CreatorID: owner.ID}
	require.NoError(t, repo.CreateGroup(ctx, first))

	second := &models.Group{Slug: "go-x", Name: "Go again", Privacy: models.PrivacyPublic, CreatorID: owner.ID}
	err := repo.CreateGroup(ctx, second)

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSoftDeleteGroup_CascadesToPosts(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.NewTestAccount(t, repo, "bob", models.StatusVerified)

	group := &models.Group{Slug: "g", Name: "G", Privacy: models.PrivacyPublic, CreatorID: owner.ID}
	require.NoError(t, repo.CreateGroup(ctx, group))
	post := &models.Post{Slug: "p", Content: "hi", AuthorID: owner.ID, GroupID: &group.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	require.NoError(t, repo.SoftDeleteGroup(ctx, group.ID))

	_, err := repo.GetGroupBySlug(ctx, "g")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetPostBySlug(ctx, "p")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Deleted slugs stay reserved.
	exists, err := repo.GroupSlugExists(ctx, "g")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreatePost_WithHashtags(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	author := testutil.NewTestAccount(t, repo, "carol", models.StatusVerified)

	first := &models.Post{Slug: "p1", Content: "x", AuthorID: author.ID, Hashtags: []string{"golang", "sqlite"}}
	second := &models.Post{Slug: "p2", Content: "y", AuthorID: author.ID, Hashtags: []string{"golang"}}
	require.NoError(t, repo.CreatePost(ctx, first))
	require.NoError(t, repo.CreatePost(ctx, second))

	got, err := repo.GetPostBySlug(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "sqlite"}, got.Hashtags)
	assert.Nil(t, got.GroupID)

	var tagCount int
	require.NoError(t, repo.DB().Get(&tagCount, `SELECT COUNT(*) FROM hashtags`))
	assert.Equal(t, 2, tagCount)
}

func TestUpsertGroupMember(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.NewTestAccount(t, repo, "dave", models.StatusVerified)
	group := &models.Group{Slug: "g", Name: "G", Privacy: models.PrivacyLimited, CreatorID: owner.ID}
	require.NoError(t, repo.CreateGroup(ctx, group))

	require.NoError(t, repo.UpsertGroupMember(ctx, &models.GroupMember{GroupID: group.ID, AccountID: owner.ID, Status: models.MemberRequest}))
	require.NoError(t, repo.UpsertGroupMember(ctx, &models.GroupMember{GroupID: group.ID, AccountID: owner.ID, Status: models.MemberApproved}))

	member, err := repo.GetGroupMember(ctx, group.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MemberApproved, member.Status)
	assert.NotNil(t, member.JoinedAt)

	members, err := repo.ListGroupMembers(ctx, group.ID, models.MemberApproved)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func seedListing(t *testing.T, repo *repository.Repository) (alice, bob *models.Account, secret *models.Group) {
	t.Helper()
	ctx := context.Background()
	alice = testutil.NewTestAccount(t, repo, "alice", models.StatusVerified)
	bob = testutil.NewTestAccount(t, repo, "bob", models.StatusVerified)

	hikers := &models.Group{Slug: "hikers-x", Name: "Hikers", Privacy: models.PrivacyPublic, CreatorID: alice.ID}
	require.NoError(t, repo.CreateGroup(ctx, hikers))
	secret = &models.Group{Slug: "secret-x", Name: "Secret", Privacy: models.PrivacyPrivate, CreatorID: alice.ID}
	require.NoError(t, repo.CreateGroup(ctx, secret))

	for _, p := range []*models.Post{
		{Slug: "p1", Content: "Morning run #running", AuthorID: alice.ID, Hashtags: []string{"running"}},
		{Slug: "p2", Content: "Lunch #food #running", AuthorID: bob.ID, Hashtags: []string{"food", "running"}},
		{Slug: "p3", Content: "Trail 50% done", AuthorID: bob.ID, GroupID: &hikers.ID},
		{Slug: "p4", Content: "Members only", AuthorID: alice.ID, GroupID: &secret.ID},
	} {
		require.NoError(t, repo.CreatePost(ctx, p))
	}
	return alice, bob, secret
}

func slugsOf(posts []models.Post) []string {
	slugs := make([]string, len(posts))
	for i, p := range posts {
		slugs[i] = p.Slug
	}
	return slugs
}

func TestListPosts_Filters(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	seedListing(t, repo)

	tests := []struct {
		name     string
		filter   models.PostFilter
		expected []string
	}{
		{"anonymous", models.PostFilter{}, []string{"p3", "p2", "p1"}},
		{"single tag", models.PostFilter{Tags: []string{"food"}}, []string{"p2"}},
		{"any tag", models.PostFilter{Tags: []string{"running", "food"}}, []string{"p2", "p1"}},
		{"author", models.PostFilter{Author: "BOB"}, []string{"p3", "p2"}},
		{"group", models.PostFilter{Group: "hiker"}, []string{"p3"}},
		{"keyword", models.PostFilter{Keyword: "lunch"}, []string{"p2"}},
		{"keyword is literal", models.PostFilter{Keyword: "%"}, []string{"p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Page, tt.filter.Limit = 1, 16
			posts, total, err := repo.ListPosts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, slugsOf(posts))
			assert.Equal(t, int64(len(tt.expected)), total)
		})
	}
}

func TestListPosts_Visibility(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice, bob, secret := seedListing(t, repo)

	_, total, err := repo.ListPosts(ctx, models.PostFilter{ViewerID: alice.ID, Page: 1, Limit: 16})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	_, total, err = repo.ListPosts(ctx, models.PostFilter{ViewerID: bob.ID, Page: 1, Limit: 16})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.NoError(t, repo.UpsertGroupMember(ctx, &models.GroupMember{
		GroupID: secret.ID, AccountID: bob.ID, Status: models.MemberApproved,
	}))
	_, total, err = repo.ListPosts(ctx, models.PostFilter{ViewerID: bob.ID, Page: 1, Limit: 16})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestListPosts_Paging(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	seedListing(t, repo)

	posts, total, err := repo.ListPosts(ctx, models.PostFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"p1"}, slugsOf(posts))

	posts, _, err = repo.ListPosts(ctx, models.PostFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, posts)
}
