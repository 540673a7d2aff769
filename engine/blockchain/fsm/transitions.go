package fsm

type transitions map[Event]State

// global transitions apply in every non-terminal state unless the state
// defines its own transition for the event.
var global = transitions{
	EventFork:    Fork,
	EventStop:    Stopped,
	EventFailure: Exit,
}

// syncTransitions apply to every substate of network synchronisation.
var syncTransitions = transitions{
	EventSyncFinished: Idle,
}

var table = map[State]transitions{
	Uninitialised: {
		EventStart: Init,
	},
	Init: {
		EventStarted:  Syncing,
		EventRollback: Rollback,
	},
	Rollback: {
		EventSuccess: Init,
	},
	Syncing: {
		EventSynced:        DownloadFinished,
		EventNotSynced:     DownloadBlocks,
		EventPaused:        DownloadPaused,
		EventNetworkHalted: End,
		EventTest:          Idle,
	},
	DownloadBlocks: {
		EventDownloaded:      Syncing,
		EventNoBlock:         Syncing,
		EventProcessFinished: DownloadFinished,
	},
	DownloadFinished: {
		EventProcessFinished: ProcessFinished,
	},
	DownloadPaused: {
		EventProcessFinished: ProcessFinished,
	},
	ProcessFinished: {
		EventSynced:    End,
		EventNotSynced: Syncing,
	},
	End: {},
	Idle: {
		EventWakeUp:   Syncing,
		EventNewBlock: NewBlock,
	},
	NewBlock: {
		EventProcessFinished: Idle,
		EventNewBlock:        NewBlock,
	},
	Fork: {
		EventSuccess: Syncing,
	},
}

var entryActions = map[State][]ActionID{
	Init:             {ActionInit},
	Rollback:         {ActionRollbackDatabase},
	Syncing:          {ActionCheckLastDownloadedBlockSynced},
	DownloadBlocks:   {ActionDownloadBlocks},
	DownloadFinished: {ActionDownloadFinished},
	DownloadPaused:   {ActionDownloadPaused},
	ProcessFinished:  {ActionCheckLastBlockSynced},
	End:              {ActionSyncingComplete},
	Idle:             {ActionCheckLater, ActionBlockchainReady},
	Fork:             {ActionStartForkRecovery},
	Stopped:          {ActionStopped},
	Exit:             {ActionExitApp},
}

// Transition looks up the target of the event in the given state and the
// entry actions of the target, in the order they must run. Returns false
// if the event has no transition from the state.
func Transition(state State, event Event) (State, []ActionID, bool) {
	if state.Terminal() {
		return state, nil, false
	}
	next, ok := table[state][event]
	if !ok && state.Syncing() {
		next, ok = syncTransitions[event]
	}
	if !ok && state != Uninitialised {
		next, ok = global[event]
	}
	if !ok && state == Uninitialised && event == EventStop {
		next, ok = Stopped, true
	}
	if !ok {
		return state, nil, false
	}
	return next, entryActions[next], true
}
