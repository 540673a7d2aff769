package fsm

// State is a state of the chain state machine.
type State int

const (
	Uninitialised State = iota
	Init
	Rollback
	Syncing
	DownloadBlocks
	DownloadFinished
	DownloadPaused
	ProcessFinished
	End
	Idle
	NewBlock
	Fork
	Stopped
	Exit
)

func (s State) String() string {
	switch s {
	case Uninitialised:
		return "uninitialised"
	case Init:
		return "init"
	case Rollback:
		return "rollback"
	case Syncing:
		return "syncing"
	case DownloadBlocks:
		return "download_blocks"
	case DownloadFinished:
		return "download_finished"
	case DownloadPaused:
		return "download_paused"
	case ProcessFinished:
		return "process_finished"
	case End:
		return "end"
	case Idle:
		return "idle"
	case NewBlock:
		return "new_block"
	case Fork:
		return "fork"
	case Stopped:
		return "stopped"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Terminal returns true for states the machine never leaves.
func (s State) Terminal() bool {
	return s == Stopped || s == Exit
}

// Syncing returns true for the substates of network synchronisation.
func (s State) Syncing() bool {
	switch s {
	case Syncing, DownloadBlocks, DownloadFinished, DownloadPaused, ProcessFinished, End:
		return true
	}
	return false
}

// Event drives the chain state machine.
type Event int

const (
	// EventNone is returned by entry actions that do not produce an event.
	EventNone Event = iota
	EventStart
	EventStarted
	EventRollback
	EventSuccess
	EventFailure
	EventSynced
	EventNotSynced
	EventPaused
	EventNetworkHalted
	EventFork
	EventTest
	EventDownloaded
	EventNoBlock
	EventProcessFinished
	EventSyncFinished
	EventWakeUp
	EventNewBlock
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "NONE"
	case EventStart:
		return "START"
	case EventStarted:
		return "STARTED"
	case EventRollback:
		return "ROLLBACK"
	case EventSuccess:
		return "SUCCESS"
	case EventFailure:
		return "FAILURE"
	case EventSynced:
		return "SYNCED"
	case EventNotSynced:
		return "NOTSYNCED"
	case EventPaused:
		return "PAUSED"
	case EventNetworkHalted:
		return "NETWORKHALTED"
	case EventFork:
		return "FORK"
	case EventTest:
		return "TEST"
	case EventDownloaded:
		return "DOWNLOADED"
	case EventNoBlock:
		return "NOBLOCK"
	case EventProcessFinished:
		return "PROCESSFINISHED"
	case EventSyncFinished:
		return "SYNCFINISHED"
	case EventWakeUp:
		return "WAKEUP"
	case EventNewBlock:
		return "NEWBLOCK"
	case EventStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// ActionID names an entry action.
type ActionID int

const (
	ActionInit ActionID = iota
	ActionRollbackDatabase
	ActionCheckLastDownloadedBlockSynced
	ActionDownloadBlocks
	ActionDownloadFinished
	ActionDownloadPaused
	ActionCheckLastBlockSynced
	ActionSyncingComplete
	ActionCheckLater
	ActionBlockchainReady
	ActionStartForkRecovery
	ActionStopped
	ActionExitApp
)

func (a ActionID) String() string {
	switch a {
	case ActionInit:
		return "init"
	case ActionRollbackDatabase:
		return "rollbackDatabase"
	case ActionCheckLastDownloadedBlockSynced:
		return "checkLastDownloadedBlockSynced"
	case ActionDownloadBlocks:
		return "downloadBlocks"
	case ActionDownloadFinished:
		return "downloadFinished"
	case ActionDownloadPaused:
		return "downloadPaused"
	case ActionCheckLastBlockSynced:
		return "checkLastBlockSynced"
	case ActionSyncingComplete:
		return "syncingComplete"
	case ActionCheckLater:
		return "checkLater"
	case ActionBlockchainReady:
		return "blockchainReady"
	case ActionStartForkRecovery:
		return "startForkRecovery"
	case ActionStopped:
		return "stopped"
	case ActionExitApp:
		return "exitApp"
	default:
		return "unknown"
	}
}
