//go:build !unix

package main

import "os"

var signalActions = map[os.Signal]action{
	os.Interrupt: actionTerminate,
}
