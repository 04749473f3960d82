package service

import (
	"encoding/json"
	"fmt"

	"github.com/xxxsen/mblog/internal/model"
)

const postCacheVersion = 1

type postCacheRecord struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	UserID int64  `json:"user_id"`
}

// postCacheEntry is the stored snapshot of one user's post list.
type postCacheEntry struct {
	Version int               `json:"v"`
	Posts   []postCacheRecord `json:"posts"`
}

func encodePosts(posts []model.Post) ([]byte, error) {
	entry := postCacheEntry{
		Version: postCacheVersion,
		Posts:   make([]postCacheRecord, 0, len(posts)),
	}
	for _, post := range posts {
		entry.Posts = append(entry.Posts, postCacheRecord{
			ID:     post.ID,
			Text:   post.Text,
			UserID: post.UserID,
		})
	}
	return json.Marshal(entry)
}

func decodePosts(data []byte) ([]model.Post, error) {
	var entry postCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode post cache entry: %w", err)
	}
	if entry.Version != postCacheVersion {
		return nil, fmt.Errorf("unexpected post cache entry version %d", entry.Version)
	}
	posts := make([]model.Post, 0, len(entry.Posts))
	for _, record := range entry.Posts {
		posts = append(posts, model.Post{
			ID:     record.ID,
			Text:   record.Text,
			UserID: record.UserID,
		})
	}
	return posts, nil
}
