package main

import (
	"context"
	"fmt"
	"io"

	"bookmarket.backend/internal/domain/entities"
	"bookmarket.backend/internal/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type aggregateStore interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	RecomputeAggregate(ctx context.Context, sellerID uuid.UUID) (*entities.RatingAggregate, error)
}

type txRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// recomputeAll rewrites every seller's rating aggregate, one transaction per
// seller, and returns how many were rewritten.
func recomputeAll(ctx context.Context, sellers aggregateStore, tx txRunner, out io.Writer) (int, error) {
	ids, err := sellers.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sellers: %w", err)
	}
	for i, id := range ids {
		var agg *entities.RatingAggregate
		err := tx.Do(ctx, func(txCtx context.Context) error {
			var err error
			agg, err = sellers.RecomputeAggregate(txCtx, id)
			return err
		})
		if err != nil {
			return i, fmt.Errorf("recompute seller %s: %w", id, err)
		}
		avg := "null"
		if agg.Average.Valid {
			avg = fmt.Sprintf("%.2f", agg.Average.Float64)
		}
		fmt.Fprintf(out, "%s\taverage=%s\ttotal=%d\n", id, avg, agg.Count)
	}
	return len(ids), nil
}

func newRecomputeRatingsCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-ratings",
		Short: "Rebuild every seller's rating average and count",
		Long: `Rebuild averageRating and totalRatings on every seller profile from the
stored ratings. Sellers without ratings get a null average and a count of 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := open()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer closeDB()

			n, err := recomputeAll(cmd.Context(), repositories.NewSellerRepository(db), repositories.NewUnitOfWork(db), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cmd.Printf("Recomputed %d sellers\n", n)
			return nil
		},
	}
}
