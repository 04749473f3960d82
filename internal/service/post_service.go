package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mblog/internal/cache"
	"github.com/xxxsen/mblog/internal/model"
	appErr "github.com/xxxsen/mblog/internal/pkg/errors"
	"github.com/xxxsen/mblog/internal/repo"
)

const (
	DefaultMaxPostBytes = 1024 * 1024
	DefaultPostCacheTTL = 300 * time.Second
)

// PostService serves a user's posts cache-aside. The store is the source
// of truth; the cache entry for a user is dropped after every committed
// create or delete and repopulated by the next list.
type PostService struct {
	posts    *repo.PostRepo
	cache    cache.Cache
	cacheTTL time.Duration
	maxBytes int
}

func NewPostService(posts *repo.PostRepo, c cache.Cache, cacheTTL time.Duration, maxBytes int) *PostService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultPostCacheTTL
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPostBytes
	}
	return &PostService{posts: posts, cache: c, cacheTTL: cacheTTL, maxBytes: maxBytes}
}

func (s *PostService) MaxBytes() int {
	return s.maxBytes
}

func (s *PostService) Create(ctx context.Context, text string, ownerID int64) (*model.Post, error) {
	if len(text) > s.maxBytes {
		return nil, appErr.ErrPayloadTooLarge
	}
	post := &model.Post{
		Text:   text,
		UserID: ownerID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	// only after commit
	s.invalidate(ctx, ownerID)
	return post, nil
}

func (s *PostService) List(ctx context.Context, ownerID int64) ([]model.Post, error) {
	key := cache.UserPostsKey(ownerID)
	if posts, ok := s.readCache(ctx, key); ok {
		return posts, nil
	}
	posts, err := s.posts.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, posts)
	return posts, nil
}

// Delete reports false when the post does not exist or belongs to another
// user; nothing is changed in either case.
func (s *PostService) Delete(ctx context.Context, postID, requesterID int64) (bool, error) {
	deleted, err := s.posts.DeleteOwned(ctx, postID, requesterID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}
	s.invalidate(ctx, requesterID)
	return true, nil
}

func (s *PostService) readCache(ctx context.Context, key string) ([]model.Post, bool) {
	if s.cache == nil {
		return nil, false
	}
	logger := logutil.GetLogger(ctx).With(zap.String("key", key))
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("post cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	posts, err := decodePosts(data)
	if err != nil {
		logger.Warn("drop undecodable post cache entry", zap.Error(err))
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Warn("post cache delete failed", zap.Error(err))
		}
		return nil, false
	}
	logger.Debug("post cache hit", zap.Int("count", len(posts)))
	return posts, true
}

func (s *PostService) writeCache(ctx context.Context, key string, posts []model.Post) {
	if s.cache == nil {
		return
	}
	logger := logutil.GetLogger(ctx).With(zap.String("key", key))
	data, err := encodePosts(posts)
	if err != nil {
		logger.Warn("encode post cache entry failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		logger.Warn("post cache write failed", zap.Error(err))
	}
}

func (s *PostService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, cache.UserPrefix(userID)); err != nil {
		logutil.GetLogger(ctx).Warn("post cache invalidation failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
