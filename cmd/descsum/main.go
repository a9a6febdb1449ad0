// descsum is a small command line tool around the descriptor and wallet
// packages: it computes and verifies descriptor checksums and derives
// addresses from an account extended key.
package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog/v2"
	"github.com/urfave/cli"

	"github.com/descwallet/descwallet/build"
	"github.com/descwallet/descwallet/wallet"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[descsum] %v\n", err)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "descsum"
	app.Version = "0.1.0"
	app.Usage = "compute and verify output descriptor checksums"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Enable debug logging to stderr.",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		if !ctx.GlobalBool("verbose") {
			return nil
		}

		walletLog := build.NewSubLogger("WLLT", os.Stderr)
		walletLog.SetLevel(btclog.LevelDebug)
		wallet.UseLogger(walletLog)

		return nil
	}
	app.Commands = []cli.Command{
		checksumCommand,
		verifyCommand,
		newAddressCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
