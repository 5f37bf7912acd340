// friday is the typed console: it connects to the daemon's websocket
// mirror, sends what you type, and prints the conversation as it
// happens.
package main

import (
	"bufio"
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"friday/internal/console"
)

func main() {
	url := cli.StringP("url", "u", "ws://127.0.0.1:8926/ws", "Daemon console URL")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: log.LevelWarn,
	})))

	client, err := console.Dial(*url)
	if err != nil {
		log.Error("friday-daemon not reachable", "url", *url, "err", err)
		os.Exit(1)
	}
	defer client.Close()

	go func() {
		for {
			e, err := client.Read()
			if err != nil {
				log.Error("connection lost", "err", err)
				os.Exit(1)
			}
			switch e.Kind {
			case "heard":
				fmt.Printf("you>    %s\n", e.Text)
			case "intent":
				fmt.Printf("        [%s]\n", e.Text)
			case "reply":
				fmt.Printf("friday> %s\n", e.Text)
			case "state":
				fmt.Printf("        (%s)\n", e.Text)
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := client.Send(line); err != nil {
			log.Error("send failed", "err", err)
			os.Exit(1)
		}
	}
}
