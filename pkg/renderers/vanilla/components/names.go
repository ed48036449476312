package components

// Component names used by the vanilla renderer and the default registry.
const (
	NameInput    = "input"
	NameTextarea = "textarea"
	NameSelect   = "select"
	NameRadio    = "radio"
	NameCheckbox = "checkbox"
	NameHidden   = "hidden"
	NameUnknown  = "unknown"
)
