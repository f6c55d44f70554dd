package repository

import (
	"context"

	"tricket/backend/internal/models"
)

func (r *Repository) ListPaymentTypes(ctx context.Context) ([]models.PaymentType, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, instant_settlement
FROM payment_types
ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.PaymentType, 0)
	for rows.Next() {
		var pt models.PaymentType
		if err := rows.Scan(&pt.ID, &pt.Name, &pt.InstantSettlement); err != nil {
			return nil, err
		}
		items = append(items, pt)
	}
	return items, rows.Err()
}
