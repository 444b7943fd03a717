package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/darasa/core/session"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	keeper session.Keeper
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  sessions           - list persisted dashboard sessions")
	fmt.Fprintln(cli.out, "  revoke -sid SID    - revoke one dashboard session")
	fmt.Fprintln(cli.out, "  purge              - revoke all dashboard sessions")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	revokeCmd := flag.NewFlagSet("revoke", flag.ExitOnError)
	revokeSID := revokeCmd.String("sid", "", "The session's client id; see `sessions`.")

	switch args[1] {
	case "sessions":
		return cli.listSessions()
	case "revoke":
		if err := revokeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *revokeSID == "" {
			revokeCmd.Usage()
			return errHelp
		}
		return cli.revoke(*revokeSID)
	case "purge":
		return cli.purge()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listSessions() error {
	sids, err := cli.keeper.SIDs()
	if err != nil {
		return err
	}
	if len(sids) == 0 {
		fmt.Fprintln(cli.out, "no sessions")
		return nil
	}

	for _, sid := range sids {
		store, err := session.Open(sid, cli.keeper)
		if err != nil {
			return err
		}
		sess := store.Session()
		role := sess.Role
		if role == session.RoleNone {
			role = "unauthenticated"
		}
		if sess.OrganizationScope != "" {
			fmt.Fprintf(cli.out, "%s\t%s\t%s\n", sid, role, sess.OrganizationScope)
		} else {
			fmt.Fprintf(cli.out, "%s\t%s\n", sid, role)
		}
	}
	return nil
}

func (cli *commandLine) revoke(sid string) error {
	if err := cli.keeper.Drop(sid); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "session %q revoked\n", sid)
	return nil
}

func (cli *commandLine) purge() error {
	sids, err := cli.keeper.SIDs()
	if err != nil {
		return err
	}
	for _, sid := range sids {
		if err = cli.keeper.Drop(sid); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "%d session(s) revoked\n", len(sids))
	return nil
}
