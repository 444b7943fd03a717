package main

import (
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	boltkv "github.com/trezcool/darasa/storage/kv/bolt"
	sqlxkv "github.com/trezcool/darasa/storage/kv/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up session storage
	keeper, closeKeeper, err := openKeeper(conf)
	errAndDie(err)
	defer closeKeeper()

	// start CLI
	cli := commandLine{
		keeper: keeper,
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("%v", err)
		}
		closeKeeper()
		os.Exit(1)
	}
}

func openKeeper(conf *core.Config) (session.Keeper, func(), error) {
	if conf.Session.Storage == "postgres" {
		store, err := sqlxkv.Open(conf.Session.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	store, err := boltkv.Open(conf.Session.BoltPath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
