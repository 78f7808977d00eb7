package repository

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tempizhere/dealhub/internal/models"
	"go.uber.org/zap"
)

const firestoreStatsCollection = "deal_stats"

// FirestoreStatsRepository реализует StatsRepository на Firestore.
// Документ сделки: {dealId, views, likes, likedBy, purchaseClicks}.
type FirestoreStatsRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStatsRepository подключается к Firestore проекта projectID
func NewFirestoreStatsRepository(ctx context.Context, projectID string, logger *zap.Logger, opts ...option.ClientOption) (*FirestoreStatsRepository, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &FirestoreStatsRepository{client: client, logger: logger}, nil
}

// Close закрывает клиент Firestore
func (r *FirestoreStatsRepository) Close() error {
	return r.client.Close()
}

func (r *FirestoreStatsRepository) doc(dealID string) *firestore.DocumentRef {
	return r.client.Collection(firestoreStatsCollection).Doc(dealID)
}

// increment выполняет upsert с firestore.Increment
func (r *FirestoreStatsRepository) increment(ctx context.Context, dealID, field string) error {
	_, err := r.doc(dealID).Set(ctx, map[string]interface{}{
		"dealId": dealID,
		field:    firestore.Increment(1),
	}, firestore.MergeAll)
	if err != nil {
		r.logger.Error("Failed to increment counter in firestore",
			zap.String("deal_id", dealID), zap.String("field", field), zap.Error(err))
		return err
	}
	return nil
}

// IncrementViews увеличивает views
func (r *FirestoreStatsRepository) IncrementViews(ctx context.Context, dealID string) error {
	return r.increment(ctx, dealID, "views")
}

// IncrementPurchaseClicks увеличивает purchaseClicks
func (r *FirestoreStatsRepository) IncrementPurchaseClicks(ctx context.Context, dealID string) error {
	return r.increment(ctx, dealID, "purchaseClicks")
}

// ToggleLike переключает лайк в транзакции Firestore.
// При конфликте транзакция перезапускается самим клиентом.
func (r *FirestoreStatsRepository) ToggleLike(ctx context.Context, dealID, actorKey string) (bool, int64, error) {
	var (
		liked bool
		likes int64
	)
	ref := r.doc(dealID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current models.DealStats
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if err := snap.DataTo(&current); err != nil {
				return fmt.Errorf("failed to unmarshal deal stats: %w", err)
			}
		}

		liked = !containsActor(current.LikedBy, actorKey)
		update := map[string]interface{}{"dealId": dealID}
		if liked {
			update["likedBy"] = firestore.ArrayUnion(actorKey)
			update["likes"] = firestore.Increment(1)
			likes = current.Likes + 1
		} else {
			update["likedBy"] = firestore.ArrayRemove(actorKey)
			update["likes"] = firestore.Increment(-1)
			likes = current.Likes - 1
		}
		return tx.Set(ref, update, firestore.MergeAll)
	})
	if err != nil {
		r.logger.Error("Failed to toggle like in firestore", zap.String("deal_id", dealID), zap.Error(err))
		return false, 0, err
	}
	return liked, likes, nil
}

// Get читает документ сделки
func (r *FirestoreStatsRepository) Get(ctx context.Context, dealID string) (models.DealStats, error) {
	stats := models.DealStats{DealID: dealID, LikedBy: []string{}}
	snap, err := r.doc(dealID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return stats, nil
		}
		r.logger.Error("Failed to get deal stats from firestore", zap.String("deal_id", dealID), zap.Error(err))
		return models.DealStats{}, err
	}
	if err := snap.DataTo(&stats); err != nil {
		return models.DealStats{}, fmt.Errorf("failed to unmarshal deal stats: %w", err)
	}
	if stats.LikedBy == nil {
		stats.LikedBy = []string{}
	}
	sort.Strings(stats.LikedBy)
	return stats, nil
}

// Delete удаляет документ сделки
func (r *FirestoreStatsRepository) Delete(ctx context.Context, dealID string) error {
	if _, err := r.doc(dealID).Delete(ctx); err != nil {
		r.logger.Error("Failed to delete deal stats in firestore", zap.String("deal_id", dealID), zap.Error(err))
		return err
	}
	return nil
}

func containsActor(actors []string, actorKey string) bool {
	for _, a := range actors {
		if a == actorKey {
			return true
		}
	}
	return false
}
