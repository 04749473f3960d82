package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mblog/internal/model"
	"github.com/xxxsen/mblog/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mblog/internal/pkg/errors"
)

var postFields = []string{"id", "text", "user_id"}

type PostRepo struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

func NewPostRepo(db *sql.DB, dialect dbutil.Dialect) *PostRepo {
	return &PostRepo{db: db, dialect: dialect}
}

// Create inserts post in its own transaction; when it returns nil the row
// is committed and post.ID is set.
func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	data := map[string]interface{}{
		"text":    post.Text,
		"user_id": post.UserID,
	}
	sqlStr, args, err := builder.BuildInsert("posts", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = r.dialect.Finalize(sqlStr+" RETURNING id", args)
	return dbutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var id int64
		if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
			return err
		}
		post.ID = id
		return nil
	})
}

func (r *PostRepo) ListByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "id asc",
	}
	sqlStr, args, err := builder.BuildSelect("posts", where, postFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = r.dialect.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	posts := make([]model.Post, 0)
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(&post.ID, &post.Text, &post.UserID); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepo) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return r.getByID(ctx, r.db, postID)
}

func (r *PostRepo) getByID(ctx context.Context, exec dbutil.Executor, postID int64) (*model.Post, error) {
	sqlStr, args, err := builder.BuildSelect("posts", map[string]interface{}{"id": postID}, postFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = r.dialect.Finalize(sqlStr, args)
	var post model.Post
	err = exec.QueryRowContext(ctx, sqlStr, args...).Scan(&post.ID, &post.Text, &post.UserID)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeleteOwned removes the post only when userID owns it. It reports false,
// without mutating anything, when the post is absent or owned by someone
// else.
func (r *PostRepo) DeleteOwned(ctx context.Context, postID, userID int64) (bool, error) {
	deleted := false
	err := dbutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		post, err := r.getByID(ctx, tx, postID)
		if err != nil {
			if appErr.IsNotFound(err) {
				return nil
			}
			return err
		}
		if post.UserID != userID {
			return nil
		}
		where := map[string]interface{}{
			"id":      postID,
			"user_id": userID,
		}
		sqlStr, args, err := builder.BuildDelete("posts", where)
		if err != nil {
			return err
		}
		sqlStr, args = r.dialect.Finalize(sqlStr, args)
		result, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		deleted = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
