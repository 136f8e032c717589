package timetracker

// Actor identifies who performed an operation and from where. It is
// recorded verbatim in the audit log. A nil UserID means anonymous.
type Actor struct {
	UserID     *string
	IP         string
	UserAgent  string
	SessionKey string
}

// System is the actor used for operations started outside a request,
// such as the command line.
func System(name string) Actor {
	a := Actor{UserAgent: "timetracker-cli"}
	if name != "" {
		a.UserID = &name
	}
	return a
}
