package model

type Post struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	UserID int64  `json:"user_id"`
}
