package repository

import (
	"context"

	"go-retreat-store/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	FindByUser(ctx context.Context, userID uint, limit int) ([]model.Transaction, error)
	FindByTeam(ctx context.Context, teamID uint, limit int) ([]model.Transaction, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	TeamStats(ctx context.Context, teamID *uint) ([]TeamStats, error)

	Append(tx *gorm.DB, entry *model.Transaction) error
}

// TeamStats aggregates the ledger per team
type TeamStats struct {
	TeamID         uint   `json:"team_id"`
	TeamName       string `json:"team_name"`
	MemberCount    int64  `json:"member_count"`
	TotalEarned    int64  `json:"total_earned"`
	TotalSpent     int64  `json:"total_spent"`
	TotalDonated   int64  `json:"total_donated"`
	TotalReceived  int64  `json:"total_received"`
	CurrentBalance int64  `json:"current_balance"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindByUser(ctx context.Context, userID uint, limit int) ([]model.Transaction, error) {
	var entries []model.Transaction
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *transactionRepo) FindByTeam(ctx context.Context, teamID uint, limit int) ([]model.Transaction, error) {
	var entries []model.Transaction
	q := r.db.WithContext(ctx).Preload("User").
		Joins("JOIN users ON users.id = transactions.user_id").
		Where("users.team_id = ?", teamID).
		Order("transactions.created_at DESC, transactions.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *transactionRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// TeamStats sums ledger entries per team. The balance total is a
// correlated subquery so it is not multiplied by the transaction join.
func (r *transactionRepo) TeamStats(ctx context.Context, teamID *uint) ([]TeamStats, error) {
	query := `
		SELECT t.id, t.name,
			COUNT(DISTINCT u.id),
			CAST(COALESCE(SUM(CASE WHEN tr.type IN ('earn', 'donation_received') THEN tr.amount ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN tr.type = 'purchase' THEN ABS(tr.amount) ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN tr.type = 'donation_sent' THEN ABS(tr.amount) ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE((SELECT SUM(d.amount) FROM donations d WHERE d.recipient_team_id = t.id), 0) AS BIGINT),
			CAST(COALESCE((SELECT SUM(b.balance) FROM users b WHERE b.team_id = t.id), 0) AS BIGINT)
		FROM teams t
		LEFT JOIN users u ON u.team_id = t.id
		LEFT JOIN transactions tr ON tr.user_id = u.id`
	var args []interface{}
	if teamID != nil {
		query += ` WHERE t.id = ?`
		args = append(args, *teamID)
	}
	query += ` GROUP BY t.id, t.name ORDER BY t.name`

	rows, err := r.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TeamStats
	for rows.Next() {
		var s TeamStats
		if err := rows.Scan(&s.TeamID, &s.TeamName, &s.MemberCount, &s.TotalEarned,
			&s.TotalSpent, &s.TotalDonated, &s.TotalReceived, &s.CurrentBalance); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *transactionRepo) Append(tx *gorm.DB, entry *model.Transaction) error {
	return tx.Omit("User").Create(entry).Error
}
