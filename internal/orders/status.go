package orders

type Status string

// Terminal status written by each lifecycle event. Prior statuses are not
// checked; any order may be moved to any of these.
const (
	StatusLabelSent      Status = "label_sent"
	StatusReceived       Status = "received"
	StatusSentToCustomer Status = "package-sent-to-customer"
)
