// friday-ctl sends one control command to the running daemon:
//
//	friday-ctl trigger         wake the assistant without the wake word
//	friday-ctl say <text>      speak text through the daemon's voice
//	friday-ctl status          print the daemon's state
package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"friday/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon socket path")
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		args = []string{"trigger"}
	}

	msg := ipc.ControlMessage{Cmd: args[0]}
	if len(args) > 1 {
		msg.Text = strings.Join(args[1:], " ")
	}

	reply, err := ipc.Send(*socket, msg)
	if err != nil {
		fmt.Println("friday-daemon not running:", err)
		os.Exit(1)
	}
	if reply != "" {
		fmt.Println(reply)
	}
}
