package databases

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformOptimisticCommitSucceeds(t *testing.T) {
	var applied, reverted, committed bool

	err := PerformOptimistic(
		func() error { applied = true; return nil },
		func() error { reverted = true; return nil },
		func() error { committed = true; return nil },
	)

	assert.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, committed)
	assert.False(t, reverted)
}

func TestPerformOptimisticRevertsOnCommitFailure(t *testing.T) {
	var reverted bool
	commitErr := errors.New("write rejected")

	err := PerformOptimistic(
		func() error { return nil },
		func() error { reverted = true; return nil },
		func() error { return commitErr },
	)

	assert.ErrorIs(t, err, commitErr)
	assert.True(t, reverted, "failed commit must undo the optimistic apply")
}

func TestPerformOptimisticApplyFailureSkipsCommit(t *testing.T) {
	applyErr := errors.New("count view unavailable")
	var committed, reverted bool

	err := PerformOptimistic(
		func() error { return applyErr },
		func() error { reverted = true; return nil },
		func() error { committed = true; return nil },
	)

	assert.ErrorIs(t, err, applyErr)
	assert.False(t, committed)
	assert.False(t, reverted)
}

func TestPerformOptimisticCommitErrorWinsOverRevertError(t *testing.T) {
	commitErr := errors.New("write rejected")

	err := PerformOptimistic(
		func() error { return nil },
		func() error { return errors.New("revert also failed") },
		func() error { return commitErr },
	)

	assert.ErrorIs(t, err, commitErr)
}
