package models

// NoticeLevel is the severity of a message shown to the operator.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// String returns the lower-case name of the level.
func (l NoticeLevel) String() string {
	switch l {
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a progress or failure message for the operator, reported as soon
// as it happens.
type Notice struct {
	Level   NoticeLevel
	File    string
	Message string
}
