package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		state   State
		event   Event
		next    State
		actions []ActionID
	}{
		{Uninitialised, EventStart, Init, []ActionID{ActionInit}},
		{Init, EventStarted, Syncing, []ActionID{ActionCheckLastDownloadedBlockSynced}},
		{Init, EventRollback, Rollback, []ActionID{ActionRollbackDatabase}},
		{Init, EventFailure, Exit, []ActionID{ActionExitApp}},
		{Rollback, EventSuccess, Init, []ActionID{ActionInit}},
		{Rollback, EventFailure, Exit, []ActionID{ActionExitApp}},
		{Syncing, EventSynced, DownloadFinished, []ActionID{ActionDownloadFinished}},
		{Syncing, EventNotSynced, DownloadBlocks, []ActionID{ActionDownloadBlocks}},
		{Syncing, EventPaused, DownloadPaused, []ActionID{ActionDownloadPaused}},
		{Syncing, EventNetworkHalted, End, []ActionID{ActionSyncingComplete}},
		{Syncing, EventFork, Fork, []ActionID{ActionStartForkRecovery}},
		{Syncing, EventTest, Idle, []ActionID{ActionCheckLater, ActionBlockchainReady}},
		{DownloadBlocks, EventDownloaded, Syncing, []ActionID{ActionCheckLastDownloadedBlockSynced}},
		{DownloadBlocks, EventNoBlock, Syncing, []ActionID{ActionCheckLastDownloadedBlockSynced}},
		{DownloadBlocks, EventProcessFinished, DownloadFinished, []ActionID{ActionDownloadFinished}},
		{DownloadFinished, EventProcessFinished, ProcessFinished, []ActionID{ActionCheckLastBlockSynced}},
		{DownloadFinished, EventSyncFinished, Idle, []ActionID{ActionCheckLater, ActionBlockchainReady}},
		{DownloadPaused, EventProcessFinished, ProcessFinished, []ActionID{ActionCheckLastBlockSynced}},
		{ProcessFinished, EventSynced, End, []ActionID{ActionSyncingComplete}},
		{ProcessFinished, EventNotSynced, Syncing, []ActionID{ActionCheckLastDownloadedBlockSynced}},
		{End, EventSyncFinished, Idle, []ActionID{ActionCheckLater, ActionBlockchainReady}},
		{Idle, EventWakeUp, Syncing, []ActionID{ActionCheckLastDownloadedBlockSynced}},
		{Idle, EventNewBlock, NewBlock, nil},
		{Idle, EventFork, Fork, []ActionID{ActionStartForkRecovery}},
		{NewBlock, EventProcessFinished, Idle, []ActionID{ActionCheckLater, ActionBlockchainReady}},
		{NewBlock, EventNewBlock, NewBlock, nil},
		{Fork, EventSuccess, Syncing, []ActionID{ActionCheckLastDownloadedBlockSynced}},
		{Fork, EventFailure, Exit, []ActionID{ActionExitApp}},
		{Fork, EventFork, Fork, []ActionID{ActionStartForkRecovery}},
		{DownloadPaused, EventStop, Stopped, []ActionID{ActionStopped}},
		{Uninitialised, EventStop, Stopped, []ActionID{ActionStopped}},
	}

	for _, c := range cases {
		t.Run(c.state.String()+"/"+c.event.String(), func(t *testing.T) {
			next, actions, ok := Transition(c.state, c.event)
			require.True(t, ok)
			assert.Equal(t, c.next, next)
			assert.Equal(t, c.actions, actions)
		})
	}
}

func TestTransition_Unknown(t *testing.T) {
	cases := []struct {
		state State
		event Event
	}{
		{Uninitialised, EventFork},
		{Uninitialised, EventWakeUp},
		{Init, EventWakeUp},
		{Syncing, EventProcessFinished},
		{Idle, EventProcessFinished},
		{Idle, EventSyncFinished},
		{Rollback, EventStarted},
		{Stopped, EventStart},
		{Stopped, EventFork},
		{Exit, EventStop},
		{Exit, EventFailure},
	}

	for _, c := range cases {
		next, actions, ok := Transition(c.state, c.event)
		assert.False(t, ok, "%s/%s", c.state, c.event)
		assert.Equal(t, c.state, next)
		assert.Empty(t, actions)
	}
}

// every state an event can lead to has a name and every event leading
// there is named too
func TestTransition_Names(t *testing.T) {
	for state, events := range table {
		assert.NotEqual(t, "unknown", state.String())
		for event, next := range events {
			assert.NotEqual(t, "UNKNOWN", event.String())
			assert.NotEqual(t, "unknown", next.String())
			for _, action := range entryActions[next] {
				assert.NotEqual(t, "unknown", action.String())
			}
		}
	}
}
