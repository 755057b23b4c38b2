package service

import (
	"context"
	"math"
	"sort"

	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"
)

const defaultHistoryLimit = 50

type RankingService interface {
	Rankings(ctx context.Context) ([]TeamRanking, error)
	TeamSummary(ctx context.Context, teamID uint) (*TeamSummary, error)
	TeamTransactions(ctx context.Context, teamID uint, limit int) ([]model.Transaction, error)
	UserTransactions(ctx context.Context, userID uint, limit int) ([]model.Transaction, error)
}

type TeamRanking struct {
	repository.TeamStats
	DonationScore int `json:"donation_score"`
}

type TeamSummary struct {
	repository.TeamStats
	Members []model.UserResponse `json:"members"`
}

// DonationScore is the share of earnings a team gave away, as a rounded percentage
func DonationScore(earned, donated int64) int {
	if earned <= 0 {
		return 0
	}
	return int(math.Round(float64(donated) / float64(earned) * 100))
}

type rankingService struct {
	txRepo   repository.TransactionRepository
	userRepo repository.UserRepository
}

func NewRankingService(txRepo repository.TransactionRepository, userRepo repository.UserRepository) RankingService {
	return &rankingService{txRepo: txRepo, userRepo: userRepo}
}

// Rankings is computed fresh on every call
func (s *rankingService) Rankings(ctx context.Context) ([]TeamRanking, error) {
	stats, err := s.txRepo.TeamStats(ctx, nil)
	if err != nil {
		return nil, storeErr("Failed to compute rankings", err)
	}

	rankings := make([]TeamRanking, 0, len(stats))
	for _, st := range stats {
		rankings = append(rankings, TeamRanking{
			TeamStats:     st,
			DonationScore: DonationScore(st.TotalEarned, st.TotalDonated),
		})
	}
	// stats arrive ordered by name, which breaks ties
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].DonationScore > rankings[j].DonationScore
	})
	return rankings, nil
}

func (s *rankingService) TeamSummary(ctx context.Context, teamID uint) (*TeamSummary, error) {
	stats, err := s.txRepo.TeamStats(ctx, &teamID)
	if err != nil {
		return nil, storeErr("Failed to load team summary", err)
	}
	if len(stats) == 0 {
		return nil, ErrTeamNotFound
	}

	users, err := s.userRepo.FindByTeam(ctx, teamID)
	if err != nil {
		return nil, storeErr("Failed to load team members", err)
	}
	members := make([]model.UserResponse, 0, len(users))
	for i := range users {
		members = append(members, users[i].ToResponse())
	}
	return &TeamSummary{TeamStats: stats[0], Members: members}, nil
}

func (s *rankingService) TeamTransactions(ctx context.Context, teamID uint, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.txRepo.FindByTeam(ctx, teamID, limit)
	if err != nil {
		return nil, storeErr("Failed to load transactions", err)
	}
	return entries, nil
}

func (s *rankingService) UserTransactions(ctx context.Context, userID uint, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.txRepo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, storeErr("Failed to load transactions", err)
	}
	return entries, nil
}
