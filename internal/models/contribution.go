package models

import "time"

// User is keyed by the username on the content platform.
type User struct {
	ID               string     `db:"user_id" json:"user"`
	RegistrationDate *time.Time `db:"registration_date" json:"registration_date,omitempty"`
}

type Contribution struct {
	ID                  int64     `db:"contribution_id" json:"id"`
	UserID              string    `db:"user_id" json:"user"`
	EditathonID         int64     `db:"editathon_id" json:"editathon_id"`
	Project             string    `db:"project" json:"project"`
	ArticleTitle        string    `db:"article_title" json:"article_title"`
	SubmissionTimestamp time.Time `db:"submission_timestamp" json:"submission_timestamp"`
	AcceptanceStatus    bool      `db:"acceptance_status" json:"acceptance_status"`
}
