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

func TestComments_Lifecycle(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	author := testutil.NewTestAccount(t, repo, "dave", models.StatusVerified)

	post := &models.Post{Slug: "p", Content: "hi", AuthorID: author.ID, CommentAvailability: true}
	require.NoError(t, repo.CreatePost(ctx, post))

	root := &models.Comment{PostID: post.ID, AuthorID: author.ID, Content: "first"}
	require.NoError(t, repo.CreateComment(ctx, root))
	reply := &models.Comment{PostID: post.ID, AuthorID: author.ID, ReplyID: &root.ID, Content: "second"}
	require.NoError(t, repo.CreateComment(ctx, reply))

	list, err := repo.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Nil(t, list[0].ReplyID)
	require.NotNil(t, list[1].ReplyID)
	assert.Equal(t, root.ID, *list[1].ReplyID)

	require.NoError(t, repo.SoftDeleteComment(ctx, root.ID))
	assert.ErrorIs(t, repo.SoftDeleteComment(ctx, root.ID), repository.ErrNotFound)

	_, err = repo.GetComment(ctx, root.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err = repo.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, reply.ID, list[0].ID)
}

func TestListComments_Empty(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	list, err := repo.ListComments(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestReactions_OnePerAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.NewTestAccount(t, repo, "alice", models.StatusVerified)
	bob := testutil.NewTestAccount(t, repo, "bob", models.StatusVerified)

	post := &models.Post{Slug: "p", Content: "hi", AuthorID: alice.ID}
	require.NoError(t, repo.CreatePost(ctx, post))

	require.NoError(t, repo.UpsertReaction(ctx, repository.ReactionOnPost, post.ID, alice.ID, models.ReactionLike))
	require.NoError(t, repo.UpsertReaction(ctx, repository.ReactionOnPost, post.ID, alice.ID, models.ReactionLove))
	require.NoError(t, repo.UpsertReaction(ctx, repository.ReactionOnPost, post.ID, bob.ID, models.ReactionLike))

	got, err := repo.GetReaction(ctx, repository.ReactionOnPost, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLove, got.Type)
	assert.Equal(t, post.ID, got.TargetID)

	counts, err := repo.CountReactions(ctx, repository.ReactionOnPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.ReactionType]int64{models.ReactionLove: 1, models.ReactionLike: 1}, counts)

	require.NoError(t, repo.DeleteReaction(ctx, repository.ReactionOnPost, post.ID, alice.ID))
	assert.ErrorIs(t, repo.DeleteReaction(ctx, repository.ReactionOnPost, post.ID, alice.ID), repository.ErrNotFound)

	_, err = repo.GetReaction(ctx, repository.ReactionOnPost, post.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReactions_CommentTargetIsSeparate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	alice := testutil.NewTestAccount(t, repo, "alice", models.StatusVerified)

	post := &models.Post{Slug: "p", Content: "hi", AuthorID: alice.ID, CommentAvailability: true}
	require.NoError(t, repo.CreatePost(ctx, post))
	comment := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "c"}
	require.NoError(t, repo.CreateComment(ctx, comment))

	require.NoError(t, repo.UpsertReaction(ctx, repository.ReactionOnComment, comment.ID, alice.ID, models.ReactionWow))

	counts, err := repo.CountReactions(ctx, repository.ReactionOnComment, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.ReactionWow])

	counts, err = repo.CountReactions(ctx, repository.ReactionOnPost, post.ID)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
