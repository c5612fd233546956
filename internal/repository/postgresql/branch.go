package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
)

// branchRepositoryImpl serves the store directory from the branches table.
type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) attendance.StoreRepository {
	return &branchRepositoryImpl{db: db}
}

// ListStores implements attendance.StoreRepository.
func (r *branchRepositoryImpl) ListStores(ctx context.Context) ([]attendance.Store, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT code, name
		FROM branches
		WHERE deleted_at IS NULL
		ORDER BY code
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	stores := make([]attendance.Store, 0)
	for rows.Next() {
		var s attendance.Store
		if err := rows.Scan(&s.BranchCode, &s.Label); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		stores = append(stores, s)
	}

	return stores, rows.Err()
}
