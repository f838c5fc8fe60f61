package domain

// Signal is one activity notification from the editor host.
// Project and Path describe the workspace the signal came from; either may
// be empty when the host does not know.
type Signal struct {
	Kind    SignalKind
	Project string
	Path    string
	Focused bool
}
