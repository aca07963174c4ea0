package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/three-backend/internal/entity"
)

type HistoryService interface {
	Record(ctx context.Context, game *entity.Game) error
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Result, error)
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type historyService struct {
	resultRepo resultRepo
	limit      int
	now        func() time.Time
}

func NewHistoryService(resultRepo resultRepo, limit int) HistoryService {
	return &historyService{
		resultRepo: resultRepo,
		limit:      limit,
		now:        time.Now,
	}
}

// Record archives a finished game. Unfinished games are ignored.
func (that *historyService) Record(ctx context.Context, game *entity.Game) error {
	if !game.IsFinished() {
		return nil
	}

	if err := that.resultRepo.Save(ctx, entity.NewResult(game, that.now())); err != nil {
		return fmt.Errorf("failed to record game result: %w", err)
	}

	return nil
}

func (that *historyService) ListByPlayer(ctx context.Context, playerID string) ([]*entity.Result, error) {
	results, err := that.resultRepo.ListByPlayer(ctx, playerID, that.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}
