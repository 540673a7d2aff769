package metrics

const (
	namespaceDPoS = "dpos"
)

const (
	subsystemBlockchain = "blockchain"
	subsystemQueue      = "queue"
)
