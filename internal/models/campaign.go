package models

import "time"

type Campaign struct {
	ID          int64   `db:"campaign_id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Year        *int64  `db:"year" json:"year"`
	Description *string `db:"description" json:"description,omitempty"`
}

type Editathon struct {
	ID          int64      `db:"editathon_id" json:"id"`
	CampaignID  int64      `db:"campaign_id" json:"campaign_id"`
	Sitename    string     `db:"sitename" json:"sitename"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
}
