package store

import "fmt"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// Scope selects which contributions an aggregation covers.
type Scope string

const (
	ScopeCampaign  Scope = "campaign"
	ScopeEditathon Scope = "editathon"
)

// scopeFilter returns the join and filter for a scope. Contributions carry
// editathon_id only, so the campaign scope has to go through editathons.
func scopeFilter(scope Scope) (join, where string) {
	if scope == ScopeCampaign {
		return "JOIN editathons e ON e.editathon_id = c.editathon_id", "e.campaign_id = ?"
	}
	return "", "c.editathon_id = ?"
}

// ProjectStatsQuery groups the scoped contributions by project.
func ProjectStatsQuery(scope Scope) string {
	join, where := scopeFilter(scope)
	return fmt.Sprintf(`
		SELECT
			c.project,
			COUNT(DISTINCT c.user_id) AS users,
			COUNT(c.article_title) AS articles,
			SUM(CASE WHEN c.acceptance_status THEN 1 ELSE 0 END) AS accepted_articles
		FROM contributions c
		%s
		WHERE %s
		GROUP BY c.project
		ORDER BY c.project
	`, join, where)
}

// UserStatsQuery groups the scoped contributions by user. projectsAgg is the
// dialect's distinct-set aggregate over c.project, selected as projects.
func UserStatsQuery(scope Scope, projectsAgg string) string {
	join, where := scopeFilter(scope)
	return fmt.Sprintf(`
		SELECT
			u.user_id,
			COUNT(c.article_title) AS articles,
			SUM(CASE WHEN c.acceptance_status THEN 1 ELSE 0 END) AS accepted_articles,
			%s AS projects
		FROM users u
		JOIN contributions c ON c.user_id = u.user_id
		%s
		WHERE %s
		GROUP BY u.user_id
		ORDER BY u.user_id
	`, projectsAgg, join, where)
}
