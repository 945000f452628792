package domain

// ContextSnapshot holds macOS environment data injected into prompts and logs.
type ContextSnapshot struct {
	OSVersion    string
	User         string
	FrontmostApp string
	RunningApps  []string
}
