package submit

// Labels for the submit control.
const (
	LabelIdle    = "Send Message"
	LabelSending = "Sending..."
)

// Control is the state of the submit button.
type Control struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
	Loading  bool   `json:"loading"`
}

// IdleControl is the actionable button.
func IdleControl() Control {
	return Control{Label: LabelIdle}
}

// SendingControl is the locked button shown while a submission is in flight.
func SendingControl() Control {
	return Control{Disabled: true, Label: LabelSending, Loading: true}
}
