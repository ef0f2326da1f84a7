//go:build unix

package main

import (
	"os"
	"syscall"
)

var signalActions = map[os.Signal]action{
	syscall.SIGINT:  actionTerminate,
	syscall.SIGTERM: actionTerminate,
	syscall.SIGQUIT: actionCrash,
	syscall.SIGABRT: actionCrash,
	syscall.SIGUSR1: actionBackground,
	syscall.SIGUSR2: actionForeground,
}
