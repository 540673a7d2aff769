package metrics

const (
	LabelDisposition = "disposition"
	LabelState       = "state"
)
