package models

import "time"

// Notice is a site announcement.
type Notice struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoticeUpdate is a partial update; nil fields are left untouched.
type NoticeUpdate struct {
	Title   *string
	Content *string
}

// MessageTemplateKey is the settings key holding the artist outreach template.
const MessageTemplateKey = "message_template"
