package session

// Verdict is what the guard decides for a gated screen.
type Verdict int

const (
	// Suspend renders nothing and does not redirect.
	Suspend Verdict = iota
	// Redirect replaces the current history entry with the login screen.
	Redirect
	// Render mounts the gated screen unchanged.
	Render
)

func (v Verdict) String() string {
	switch v {
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "suspend"
	}
}

// Guard decides how a gated screen is presented for st.
func Guard(st State) Verdict {
	switch st.Status {
	case StatusPresent:
		return Render
	case StatusAbsent:
		return Redirect
	default:
		return Suspend
	}
}
