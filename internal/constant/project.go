package constant

type TrainingStatus int

const (
	TrainingStatusPending TrainingStatus = iota
	TrainingStatusRunning
	TrainingStatusCompleted
	TrainingStatusFailed
)

func (s TrainingStatus) String() string {
	switch s {
	case TrainingStatusPending:
		return "pending"
	case TrainingStatusRunning:
		return "running"
	case TrainingStatusCompleted:
		return "completed"
	case TrainingStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Prefix of ids given to annotations proposed by the detector
const AUTO_ANNOTATION_PREFIX = "auto-"

const AUTO_ANNOTATION_ID_LENGTH = 8
