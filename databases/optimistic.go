package databases

import "go.uber.org/zap"

// PerformOptimistic runs the optimistic-update discipline shared by the
// like/unlike toggle and the dashboard counters: apply the predicted change
// first, then run the authoritative commit, and undo the prediction when the
// commit is rejected. The commit error is always the one returned; a failed
// revert is logged and swallowed since the next rollup reconciles the cache.
func PerformOptimistic(apply func() error, revert func() error, commit func() error) error {
	if err := apply(); err != nil {
		return err
	}
	if err := commit(); err != nil {
		if revertErr := revert(); revertErr != nil {
			zap.S().Errorw("failed to revert optimistic update",
				"commitError", err,
				"revertError", revertErr,
			)
		}
		return err
	}
	return nil
}
