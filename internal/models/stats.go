package models

type ProjectStats struct {
	Project          string `db:"project" json:"project"`
	Users            int64  `db:"users" json:"users"`
	Articles         int64  `db:"articles" json:"articles"`
	AcceptedArticles int64  `db:"accepted_articles" json:"accepted_articles"`
}

type UserStats struct {
	User             string   `db:"user_id" json:"user"`
	Articles         int64    `db:"articles" json:"articles"`
	AcceptedArticles int64    `db:"accepted_articles" json:"accepted_articles"`
	Projects         []string `db:"-" json:"projects"`
}
