// Command beaconctl manages beacon user keys and inspects advertising
// payloads.
//
// Usage:
//
//	beaconctl keys get [--db path]
//	beaconctl keys set [--db path] <index> <value>
//	beaconctl encode [--uuid-msw 0x1234] [--major n] [--minor n] [--tx-power -59]
//	beaconctl decode "1A FF 4C 00 02 15 ..."
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/chaz8081/gobeacon/internal/beacon"
	"github.com/chaz8081/gobeacon/internal/ble/protocol"
	"github.com/chaz8081/gobeacon/internal/config"
	"github.com/chaz8081/gobeacon/internal/keystore"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "beaconctl"
	app.Usage = "Manage gobeacon user keys and advertising payloads"
	app.Version = version

	dbFlag := cli.StringFlag{
		Name:  "db",
		Value: filepath.Join(config.DefaultDataDir(), "keys.db"),
		Usage: "SQLite user key database",
	}

	app.Commands = []cli.Command{
		cli.Command{
			Name:  "keys",
			Usage: "Read or write persisted user keys",
			Subcommands: []cli.Command{
				cli.Command{
					Name:   "get",
					Usage:  "Print every user key slot",
					Flags:  []cli.Flag{dbFlag},
					Action: keysGetCommand,
				},
				cli.Command{
					Name:      "set",
					Usage:     "Set one user key (0 restores the built-in default)",
					ArgsUsage: "<index> <value>",
					Flags:     []cli.Flag{dbFlag},
					Action:    keysSetCommand,
				},
			},
		},
		cli.Command{
			Name:  "encode",
			Usage: "Resolve user keys and print the advertising payload",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "uuid-msw", Value: "0", Usage: "UUID most significant 16 bits"},
				cli.StringFlag{Name: "major", Value: "0", Usage: "Beacon major"},
				cli.StringFlag{Name: "minor", Value: "0", Usage: "Beacon minor"},
				cli.StringFlag{Name: "tx-power", Value: "0", Usage: "Measured power in dBm, or raw key value"},
				cli.StringFlag{Name: "db", Usage: "Read keys from this SQLite database instead of flags"},
			},
			Action: encodeCommand,
		},
		cli.Command{
			Name:      "decode",
			Usage:     "Parse a hex payload (with or without the AD length byte)",
			ArgsUsage: "<hex>",
			Action:    decodeCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "beaconctl:", err)
		os.Exit(1)
	}
}

func keysGetCommand(c *cli.Context) error {
	store, err := keystore.OpenSQLite(c.String("db"))
	if err != nil {
		return err
	}
	defer store.Close()

	all, err := store.All()
	if err != nil {
		return err
	}
	names := map[int]string{
		beacon.KeyUUIDMSW: "uuid-msw",
		beacon.KeyMajor:   "major",
		beacon.KeyMinor:   "minor",
		beacon.KeyTxPower: "tx-power",
	}
	for i, v := range all {
		fmt.Printf("%d\t0x%04X\t%s\n", i, v, names[i])
	}
	return nil
}

func keysSetCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("usage: beaconctl keys set <index> <value>", 2)
	}
	index, err := strconv.Atoi(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", c.Args().Get(0), err)
	}
	value, err := parseKey(c.Args().Get(1))
	if err != nil {
		return err
	}

	store, err := keystore.OpenSQLite(c.String("db"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteUserKey(index, value); err != nil {
		return err
	}
	fmt.Printf("key %d = 0x%04X\n", index, value)
	return nil
}

func encodeCommand(c *cli.Context) error {
	var keys beacon.KeyReader
	if path := c.String("db"); path != "" {
		store, err := keystore.OpenSQLite(path)
		if err != nil {
			return err
		}
		defer store.Close()
		keys = store
	} else {
		m := &keystore.Map{}
		for index, flagName := range []string{"uuid-msw", "major", "minor", "tx-power"} {
			v, err := parseKey(c.String(flagName))
			if err != nil {
				return fmt.Errorf("--%s: %w", flagName, err)
			}
			if err := m.WriteUserKey(index, v); err != nil {
				return err
			}
		}
		keys = m
	}

	cfg := beacon.Resolve(keys)
	payload := beacon.Encode(cfg)
	air, err := protocol.Marshal([]protocol.ADStructure{payload.AD()})
	if err != nil {
		return err
	}

	fmt.Println(cfg)
	fmt.Printf("payload: % X\n", payload[:])
	fmt.Printf("on air:  % X\n", air)
	return nil
}

func decodeCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("usage: beaconctl decode <hex>", 2)
	}
	raw, err := hex.DecodeString(strings.NewReplacer(" ", "", ":", "", "-", "").Replace(strings.Join(c.Args(), "")))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}

	// Accept the on-air form by stripping a matching length prefix.
	if len(raw) == beacon.PayloadSize+1 && int(raw[0]) == beacon.PayloadSize {
		raw = raw[1:]
	}
	cfg, err := beacon.DecodePayload(raw)
	if err != nil {
		return err
	}
	fmt.Println(cfg)
	return nil
}

// parseKey accepts decimal, 0x-prefixed hex, or a negative dBm value which
// is stored as its two's complement low byte.
func parseKey(s string) (uint16, error) {
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q: %w", s, err)
		}
		return uint16(uint8(int8(v))), nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return uint16(v), nil
}
