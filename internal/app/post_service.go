package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gopherblog/internal/model"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("forbidden")
)

const deletedAuthorName = "deleted user"

// PostService owns all post mutations. Ownership is checked by stored user
// ID, never by object identity, so the check is stable across reloads.
type PostService struct {
	postStore PostStore
	userStore UserStore
	feedCache FeedCache
	auditor   AuditPublisher
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  string
}

type EditPostInput struct {
	RequesterID uint
	PostID      uint
	Title       string
	Content     string
}

func NewPostService(postStore PostStore, userStore UserStore, feedCache FeedCache, auditor AuditPublisher) *PostService {
	return &PostService{
		postStore: postStore,
		userStore: userStore,
		feedCache: feedCache,
		auditor:   auditor,
	}
}

func (s *PostService) CreatePost(input CreatePostInput) (*model.Post, error) {
	if input.AuthorID == 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	post := &model.Post{
		UserID:  input.AuthorID,
		Title:   title,
		Content: content,
	}
	if err := s.postStore.Create(post); err != nil {
		return nil, err
	}
	s.invalidateFeed()
	return post, nil
}

// ListPosts returns every post newest-first with its author resolved. A
// missing owner is not an error; the entry is rendered as authored by a
// deleted user.
func (s *PostService) ListPosts() ([]model.PostView, error) {
	ctx := context.Background()
	if s.feedCache != nil {
		dirty, err := s.feedCache.IsDirty(ctx)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.feedCache.GetFeed(ctx); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	posts, err := s.postStore.ListNewestFirst()
	if err != nil {
		return nil, err
	}

	authors := make(map[uint]*model.User, len(posts))
	feed := make([]model.PostView, 0, len(posts))
	for _, post := range posts {
		author, seen := authors[post.UserID]
		if !seen {
			author, err = s.userStore.GetByID(post.UserID)
			if err != nil {
				return nil, err
			}
			authors[post.UserID] = author
		}

		view := model.PostView{
			ID:        post.ID,
			Title:     post.Title,
			Content:   post.Content,
			CreatedAt: post.CreatedAt,
			AuthorID:  post.UserID,
		}
		if author != nil {
			view.Author = author.Username
		} else {
			view.Author = deletedAuthorName
			view.AuthorDeleted = true
		}
		feed = append(feed, view)
	}

	if s.feedCache != nil {
		if dirty, dirtyErr := s.feedCache.IsDirty(ctx); dirtyErr == nil && !dirty {
			_ = s.feedCache.SetFeed(ctx, feed)
		}
	}
	return feed, nil
}

func (s *PostService) EditPost(input EditPostInput) (*model.Post, error) {
	if input.RequesterID == 0 || input.PostID == 0 {
		return nil, ErrInvalidInput
	}

	post, err := s.postStore.GetByID(input.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != input.RequesterID {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	post.Title = title
	post.Content = content
	if err := s.postStore.Update(post); err != nil {
		return nil, err
	}
	s.invalidateFeed()
	return post, nil
}

func (s *PostService) DeletePost(requesterID, postID uint) error {
	if requesterID == 0 || postID == 0 {
		return ErrInvalidInput
	}

	post, err := s.postStore.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != requesterID {
		return ErrForbidden
	}

	if err := s.postStore.Delete(postID); err != nil {
		return err
	}
	s.invalidateFeed()

	if s.auditor != nil {
		event := model.AuditEvent{
			EventID:    uuid.New().String(),
			ActorID:    requesterID,
			Action:     model.AuditActionPostDeleted,
			SubjectID:  postID,
			Detail:     post.Title,
			OccurredAt: time.Now(),
		}
		if err := s.auditor.Publish(context.Background(), event); err != nil {
			logrus.WithError(err).Warn("publish audit event failed")
		}
	}
	return nil
}

func (s *PostService) invalidateFeed() {
	if s.feedCache == nil {
		return
	}
	ctx := context.Background()
	if err := s.feedCache.MarkDirty(ctx); err != nil {
		logrus.WithError(err).Warn("mark feed dirty failed")
	}
	if err := s.feedCache.DeleteFeed(ctx); err != nil {
		logrus.WithError(err).Warn("delete cached feed failed")
	}
}
