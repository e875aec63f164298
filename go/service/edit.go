package service

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/kjohn5218/route-selection-sub000/go/auth"
)

// periodMeta is the editable surface of a period. Everything else is
// frozen after creation except the route catalog, which has its own
// operation.
type periodMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EditPeriod applies a JSON merge patch over the period's name and
// description. Unknown fields in the patch are ignored; edits are
// blocked once the period is COMPLETED.
func (s *Service) EditPeriod(ctx context.Context, pr auth.Principal, periodID string, patch []byte) error {
	if !pr.IsManager() {
		return forbidden(&pr, "edit period")
	}

	var p, err = s.store.GetPeriod(ctx, periodID)
	if err != nil {
		return s.fail(ctx, &pr, periodID, err)
	}

	current, err := json.Marshal(periodMeta{Name: p.Name, Description: p.Description})
	if err != nil {
		return fmt.Errorf("encoding period metadata: %w", err)
	}
	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return s.fail(ctx, &pr, periodID, fmt.Errorf("applying period patch: %w", err))
	}
	var next periodMeta
	if err = json.Unmarshal(merged, &next); err != nil {
		return s.fail(ctx, &pr, periodID, fmt.Errorf("decoding patched metadata: %w", err))
	}

	if err = s.store.UpdatePeriodMeta(ctx, pr.UserID, periodID, next.Name, next.Description); err != nil {
		return s.fail(ctx, &pr, periodID, err)
	}
	return nil
}
