// Command phyllo-send opens a byte source, sends one message through a
// phyllo-go transport, waits briefly for any reply/ARQ traffic to settle,
// and exits.
package main

import (
	"github.com/alecthomas/kong"
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("phyllo-send"),
		kong.Description("Send one Pub/Sub message or untopiced document over a phyllo-go transport"),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
