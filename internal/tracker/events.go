package tracker

import "github.com/alexanderramin/codeclock/internal/domain"

type event any

type signalEvent struct {
	sig domain.Signal
}

type timerEvent struct {
	role timerRole
	gen  uint64
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdStop
	cmdPause
	cmdResume
	cmdSave
)

type commandEvent struct {
	kind commandKind
	done chan error
}

type healthEvent struct {
	pause bool
}

type settingsEvent struct {
	cfg Config
}

type branchEvent struct {
	path   string
	branch string
}
