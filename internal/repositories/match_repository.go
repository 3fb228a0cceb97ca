package repositories

import (
	"context"
	"database/sql"

	"goaltips/internal/models"
)

type MatchRepository struct {
	DB *sql.DB
}

func (r *MatchRepository) CreateMatch(ctx context.Context, match models.Match) (models.Match, error) {
	query := `INSERT INTO matches (home_team, away_team, league, kickoff_at, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, match.HomeTeam, match.AwayTeam, match.League, match.KickoffAt, match.Status)
	if err != nil {
		return models.Match{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Match{}, err
	}
	return r.GetMatchByID(ctx, int(id))
}

func (r *MatchRepository) GetMatchByID(ctx context.Context, id int) (models.Match, error) {
	query := `SELECT id, home_team, away_team, league, kickoff_at, status, home_score, away_score, created_at, updated_at FROM matches WHERE id = ?`
	row := r.DB.QueryRowContext(ctx, query, id)
	match, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return models.Match{}, models.ErrMatchNotFound
	}
	return match, err
}

func scanMatch(scanner interface{ Scan(dest ...any) error }) (models.Match, error) {
	var match models.Match
	var homeScore, awayScore sql.NullInt64
	var updated sql.NullTime
	err := scanner.Scan(&match.ID, &match.HomeTeam, &match.AwayTeam, &match.League, &match.KickoffAt, &match.Status, &homeScore, &awayScore, &match.CreatedAt, &updated)
	if err != nil {
		return models.Match{}, err
	}
	if homeScore.Valid {
		v := int(homeScore.Int64)
		match.HomeScore = &v
	}
	if awayScore.Valid {
		v := int(awayScore.Int64)
		match.AwayScore = &v
	}
	if updated.Valid {
		t := updated.Time
		match.UpdatedAt = &t
	}
	return match, nil
}

func (r *MatchRepository) GetMatches(ctx context.Context) ([]models.Match, error) {
	query := `SELECT id, home_team, away_team, league, kickoff_at, status, home_score, away_score, created_at, updated_at FROM matches ORDER BY kickoff_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *MatchRepository) UpdateMatch(ctx context.Context, match models.Match) (models.Match, error) {
	query := `UPDATE matches SET home_team = ?, away_team = ?, league = ?, kickoff_at = ?, status = ?, home_score = ?, away_score = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, match.HomeTeam, match.AwayTeam, match.League, match.KickoffAt, match.Status, match.HomeScore, match.AwayScore, match.ID)
	if err != nil {
		return models.Match{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Match{}, err
	}
	if affected == 0 {
		return models.Match{}, models.ErrMatchNotFound
	}
	return r.GetMatchByID(ctx, match.ID)
}

func (r *MatchRepository) DeleteMatch(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrMatchNotFound
	}
	return nil
}
