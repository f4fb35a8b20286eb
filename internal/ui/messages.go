package ui

// Mode represents what the list is currently waiting for
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeRename
	ModeDivider
	ModeAttach
	ModeDrag
	ModeConfirmClear
)

// String returns the display name for a mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeAdd:
		return "Add"
	case ModeRename:
		return "Rename"
	case ModeDivider:
		return "Section"
	case ModeAttach:
		return "Attach"
	case ModeDrag:
		return "Move"
	case ModeConfirmClear:
		return "Clear"
	default:
		return "Unknown"
	}
}

// IsInput reports whether the mode owns the text input
func (m Mode) IsInput() bool {
	switch m {
	case ModeAdd, ModeRename, ModeDivider, ModeAttach:
		return true
	default:
		return false
	}
}

// Messages for inter-component communication

// ImageSavedMsg reports the outcome of an asynchronous image import
type ImageSavedMsg struct {
	TaskID   string
	Filename string
	Err      error
}

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}
