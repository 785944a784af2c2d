package main

import (
	"robotorder/cmd/robotorder/commands"
	"robotorder/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
