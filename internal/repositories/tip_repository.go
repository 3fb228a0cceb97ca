package repositories

import (
	"context"
	"database/sql"
	"time"

	"goaltips/internal/models"
)

type TipRepository struct {
	DB *sql.DB
}

const tipColumns = `t.id, t.match_id, t.prediction, t.market, t.odds, t.is_free, t.result, t.image_url, t.published_at, t.created_at, t.updated_at,
	m.id, m.home_team, m.away_team, m.league, m.kickoff_at, m.status`

func (r *TipRepository) CreateTip(ctx context.Context, tip models.Tip) (models.Tip, error) {
	query := `INSERT INTO tips (match_id, prediction, market, odds, is_free, result, image_url) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, tip.MatchID, tip.Prediction, tip.Market, tip.Odds, tip.IsFree, models.TipResultPending, tip.ImageURL)
	if err != nil {
		return models.Tip{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Tip{}, err
	}
	return r.GetTipByID(ctx, int(id))
}

func (r *TipRepository) GetTipByID(ctx context.Context, id int) (models.Tip, error) {
	query := `SELECT ` + tipColumns + ` FROM tips t JOIN matches m ON m.id = t.match_id WHERE t.id = ?`
	row := r.DB.QueryRowContext(ctx, query, id)
	tip, err := scanTip(row)
	if err == sql.ErrNoRows {
		return models.Tip{}, models.ErrTipNotFound
	}
	return tip, err
}

func scanTip(scanner interface{ Scan(dest ...any) error }) (models.Tip, error) {
	var tip models.Tip
	var match models.Match
	var imageURL sql.NullString
	var published, updated sql.NullTime
	err := scanner.Scan(
		&tip.ID, &tip.MatchID, &tip.Prediction, &tip.Market, &tip.Odds, &tip.IsFree, &tip.Result, &imageURL, &published, &tip.CreatedAt, &updated,
		&match.ID, &match.HomeTeam, &match.AwayTeam, &match.League, &match.KickoffAt, &match.Status,
	)
	if err != nil {
		return models.Tip{}, err
	}
	tip.ImageURL = imageURL.String
	if published.Valid {
		t := published.Time
		tip.PublishedAt = &t
	}
	if updated.Valid {
		t := updated.Time
		tip.UpdatedAt = &t
	}
	tip.Match = &match
	return tip, nil
}

// GetPublishedTips returns published tips with kickoff on or after the given
// day, newest first.
func (r *TipRepository) GetPublishedTips(ctx context.Context, from time.Time) ([]models.Tip, error) {
	query := `SELECT ` + tipColumns + ` FROM tips t JOIN matches m ON m.id = t.match_id
		WHERE t.published_at IS NOT NULL AND m.kickoff_at >= ? ORDER BY m.kickoff_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tips []models.Tip
	for rows.Next() {
		tip, err := scanTip(rows)
		if err != nil {
			return nil, err
		}
		tips = append(tips, tip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tips, nil
}

func (r *TipRepository) GetAllTips(ctx context.Context) ([]models.Tip, error) {
	query := `SELECT ` + tipColumns + ` FROM tips t JOIN matches m ON m.id = t.match_id ORDER BY t.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tips []models.Tip
	for rows.Next() {
		tip, err := scanTip(rows)
		if err != nil {
			return nil, err
		}
		tips = append(tips, tip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tips, nil
}

func (r *TipRepository) UpdateTip(ctx context.Context, tip models.Tip) (models.Tip, error) {
	query := `UPDATE tips SET match_id = ?, prediction = ?, market = ?, odds = ?, is_free = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, tip.MatchID, tip.Prediction, tip.Market, tip.Odds, tip.IsFree, tip.ImageURL, tip.ID)
	if err != nil {
		return models.Tip{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Tip{}, err
	}
	if affected == 0 {
		return models.Tip{}, models.ErrTipNotFound
	}
	return r.GetTipByID(ctx, tip.ID)
}

func (r *TipRepository) PublishTip(ctx context.Context, id int) (models.Tip, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE tips SET published_at = CURRENT_TIMESTAMP WHERE id = ? AND published_at IS NULL`, id)
	if err != nil {
		return models.Tip{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Tip{}, err
	}
	if affected == 0 {
		// already published or missing; GetTipByID sorts out which
		return r.GetTipByID(ctx, id)
	}
	return r.GetTipByID(ctx, id)
}

func (r *TipRepository) SetTipResult(ctx context.Context, id int, result string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tips SET result = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, result, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTipNotFound
	}
	return nil
}

func (r *TipRepository) SetTipImage(ctx context.Context, id int, imageURL string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tips SET image_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, imageURL, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTipNotFound
	}
	return nil
}

func (r *TipRepository) DeleteTip(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tips WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrTipNotFound
	}
	return nil
}
