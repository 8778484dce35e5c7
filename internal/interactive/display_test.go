// Copyright (c) rustydotwtf 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package interactive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOfMirrorsOutcomes(t *testing.T) {
	assert.Equal(t, StatusCompleted, statusOf(OutcomeCompleted))
	assert.Equal(t, StatusError, statusOf(OutcomeError))
	assert.Equal(t, StatusAborted, statusOf(OutcomeAborted))
	assert.Equal(t, StatusSkipped, statusOf(OutcomeSkipped))
	assert.Equal(t, StatusBackgrounded, statusOf(OutcomeBackgrounded))
}

func TestChannelDisplay_ForwardsUpdates(t *testing.T) {
	d := NewChannelDisplay(context.Background(), 4)
	defer d.Close()

	d.Render(Update{Index: 0, Label: "a", Status: StatusRunning})
	d.Render(Update{Index: 0, Label: "a", Status: StatusCompleted})

	u := <-d.Updates()
	assert.Equal(t, StatusRunning, u.Status)

	u = <-d.Updates()
	assert.Equal(t, StatusCompleted, u.Status)
}

func TestChannelDisplay_DropsWhenFull(t *testing.T) {
	d := NewChannelDisplay(context.Background(), 1)
	defer d.Close()

	d.Render(Update{Index: 0, Status: StatusRunning})
	d.Render(Update{Index: 1, Status: StatusRunning}) // dropped, receiver is behind

	u := <-d.Updates()
	assert.Equal(t, 0, u.Index)

	select {
	case u, ok := <-d.Updates():
		require.False(t, ok, "no second update should arrive, got %+v", u)
	default:
	}
}

func TestChannelDisplay_RenderAfterCloseIsDropped(t *testing.T) {
	d := NewChannelDisplay(context.Background(), 1)
	d.Close()

	assert.NotPanics(t, func() {
		d.Render(Update{Index: 0, Status: StatusRunning})
	})
}
