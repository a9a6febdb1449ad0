package main

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/urfave/cli"

	"github.com/descwallet/descwallet/descriptor"
	"github.com/descwallet/descwallet/wallet"
)

var checksumCommand = cli.Command{
	Name:      "checksum",
	Usage:     "Compute the checksum of a descriptor.",
	ArgsUsage: "descriptor",
	Description: `
	Computes the checksum of the given descriptor body and prints the
	full descriptor#checksum form. The descriptor must not already carry
	a checksum suffix.`,
	Action: computeChecksum,
}

func computeChecksum(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "checksum")
	}

	desc, err := descriptor.AppendChecksum(ctx.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(desc)

	return nil
}

var verifyCommand = cli.Command{
	Name:      "verify",
	Usage:     "Verify the checksum of a descriptor.",
	ArgsUsage: "descriptor#checksum",
	Description: `
	Re-computes the checksum of the descriptor body and compares it to
	the suffix. Prints the bare descriptor body on success and exits
	non-zero on a mismatch.`,
	Action: verifyChecksum,
}

func verifyChecksum(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "verify")
	}

	body, err := descriptor.Verify(ctx.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(body)

	return nil
}

var newAddressCommand = cli.Command{
	Name:      "newaddress",
	Usage:     "Derive addresses from an account extended public key.",
	ArgsUsage: "xpub",
	Description: `
	Derives the next address(es) from the given account key and prints
	them, preceded by the descriptor of the branch they were derived
	from.`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "type, t",
			Value: "wpkh",
			Usage: "The script type to derive: pkh, wpkh or " +
				"sh-wpkh.",
		},
		cli.BoolFlag{
			Name: "change",
			Usage: "Derive from the change branch instead of " +
				"the receive branch.",
		},
		cli.IntFlag{
			Name:  "count, n",
			Value: 1,
			Usage: "The number of addresses to derive.",
		},
		cli.BoolFlag{
			Name:  "testnet",
			Usage: "Encode addresses for testnet.",
		},
	},
	Action: newAddress,
}

func newAddress(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "newaddress")
	}

	accountKey, err := hdkeychain.NewKeyFromString(ctx.Args().First())
	if err != nil {
		return fmt.Errorf("unable to parse account key: %w", err)
	}

	var scriptType wallet.ScriptType
	switch ctx.String("type") {
	case "pkh":
		scriptType = wallet.ScriptTypePKH
	case "wpkh":
		scriptType = wallet.ScriptTypeWPKH
	case "sh-wpkh":
		scriptType = wallet.ScriptTypeSHWPKH
	default:
		return fmt.Errorf("unknown script type %q",
			ctx.String("type"))
	}

	chainParams := &chaincfg.MainNetParams
	if ctx.Bool("testnet") {
		chainParams = &chaincfg.TestNet3Params
	}

	w, err := wallet.New(wallet.Config{
		ChainParams: chainParams,
		ScriptType:  scriptType,
		AccountKey:  accountKey,
	})
	if err != nil {
		return err
	}

	change := ctx.Bool("change")

	var desc string
	if change {
		desc, err = w.ChangeDescriptor()
	} else {
		desc, err = w.ExternalDescriptor()
	}
	if err != nil {
		return err
	}
	fmt.Println(desc)

	for i := 0; i < ctx.Int("count"); i++ {
		var addr btcutil.Address
		if change {
			addr, err = w.NewChangeAddress()
		} else {
			addr, err = w.NewAddress()
		}
		if err != nil {
			return err
		}

		fmt.Println(addr)
	}

	return nil
}
