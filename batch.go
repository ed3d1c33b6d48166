package gridbase

import (
	"context"
	"fmt"

	"gridbase/schema"
)

// ── Batch writes ────────────────────────────────────────────
// A batch mixes creates (no row id) and updates (id present). The two
// groups go out as independent bulk calls: one failing does not stop
// the other, and the result reports each outcome on its own so a
// half-applied batch is distinguishable from a clean failure.

// BatchResult reports what a batch did, group by group.
type BatchResult struct {
	// CreatedIDs holds backend-assigned ids for the create group, in
	// input order. nil when the group was empty or failed.
	CreatedIDs []int64

	// UpdatedIDs holds the ids echoed for the update group, in input
	// order. nil when the group was empty or failed.
	UpdatedIDs []int64

	// CreateErr and UpdateErr carry the failure of their group, nil
	// on success or when the group was empty.
	CreateErr error
	UpdateErr error
}

// Err folds the group outcomes into a single error. Both groups
// failing returns both; exactly one group failing while the other was
// applied wraps ErrPartialBatchFailure.
func (r *BatchResult) Err() error {
	switch {
	case r.CreateErr != nil && r.UpdateErr != nil:
		return fmt.Errorf("create group: %w; update group: %w", r.CreateErr, r.UpdateErr)
	case r.CreateErr != nil && len(r.UpdatedIDs) > 0:
		return fmt.Errorf("%w: create group: %w", ErrPartialBatchFailure, r.CreateErr)
	case r.CreateErr != nil:
		return fmt.Errorf("create group: %w", r.CreateErr)
	case r.UpdateErr != nil && len(r.CreatedIDs) > 0:
		return fmt.Errorf("%w: update group: %w", ErrPartialBatchFailure, r.UpdateErr)
	case r.UpdateErr != nil:
		return fmt.Errorf("update group: %w", r.UpdateErr)
	default:
		return nil
	}
}

// AddDataBatch writes a mixed batch of rows. Rows without an id are
// created in bulk, rows with one are updated in bulk, order preserved
// within each group. Every row is encoded before anything is sent, so
// an unknown field name aborts the batch with no writes at all.
func (c *Client) AddDataBatch(ctx context.Context, tableID int64, rows []schema.Row) (*BatchResult, error) {
	res := &BatchResult{}
	if len(rows) == 0 {
		return res, nil
	}

	fm, err := c.FieldMap(ctx, tableID)
	if err != nil {
		return nil, err
	}

	var creates, updates []map[string]any
	for i, row := range rows {
		payload, err := schema.Encode(row, fm)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if id := row.ID(); id != 0 {
			payload["id"] = id
			updates = append(updates, payload)
		} else {
			// An explicit null id still means create.
			delete(payload, "id")
			creates = append(creates, payload)
		}
	}

	if len(creates) > 0 {
		res.CreatedIDs, res.CreateErr = c.sendCreates(ctx, tableID, creates)
	}
	if len(updates) > 0 {
		res.UpdatedIDs, res.UpdateErr = c.sendUpdates(ctx, tableID, updates)
	}
	return res, res.Err()
}

func (c *Client) sendCreates(ctx context.Context, tableID int64, creates []map[string]any) ([]int64, error) {
	stored, err := c.backend.CreateRows(ctx, tableID, creates)
	if err != nil {
		return nil, err
	}
	if len(stored) != len(creates) {
		return nil, fmt.Errorf("backend returned %d created rows for %d sent", len(stored), len(creates))
	}
	ids := make([]int64, len(stored))
	for i, raw := range stored {
		id := schema.Row(raw).ID()
		if id == 0 {
			return nil, fmt.Errorf("backend returned a created row without an id")
		}
		ids[i] = id
	}
	return ids, nil
}

func (c *Client) sendUpdates(ctx context.Context, tableID int64, updates []map[string]any) ([]int64, error) {
	stored, err := c.backend.UpdateRows(ctx, tableID, updates)
	if err != nil {
		return nil, err
	}
	if len(stored) != len(updates) {
		return nil, fmt.Errorf("backend returned %d updated rows for %d sent", len(stored), len(updates))
	}
	ids := make([]int64, len(stored))
	for i, raw := range stored {
		ids[i] = schema.Row(raw).ID()
	}
	return ids, nil
}
