package ux

// Setup describes what is in place locally.
type Setup struct {
	HasConfig bool
	LoggedIn  bool
	Expired   bool
}

// NextStep suggests the command to run next, or "" when nothing is missing.
func NextStep(s Setup) string {
	switch {
	case !s.HasConfig:
		return "Run 'poetryctl config init --api-url <url>' to point poetryctl at your server"
	case !s.LoggedIn:
		return "Run 'poetryctl auth login' to sign in"
	case s.Expired:
		return "Your token has expired. Run 'poetryctl auth login' or 'poetryctl auth refresh'"
	default:
		return ""
	}
}
