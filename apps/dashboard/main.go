package main

import (
	"context"
	"expvar"
	"fmt"
	stdlog "log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/darasa/apps/dashboard/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	logsvc "github.com/trezcool/darasa/services/logger"
	platformsvc "github.com/trezcool/darasa/services/platform"
	boltkv "github.com/trezcool/darasa/storage/kv/bolt"
	inmemkv "github.com/trezcool/darasa/storage/kv/inmem"
	sqlxkv "github.com/trezcool/darasa/storage/kv/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewZerologLogger(os.Stdout, conf)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(
			stdlog.New(os.Stdout, "DASHBOARD : ", stdlog.LstdFlags|stdlog.Lmicroseconds|stdlog.Lshortfile),
			conf,
		)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	// set up session storage
	keeper, closeKeeper, err := setUpKeeper(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session storage: %v", err), err)
	}
	defer closeKeeper()

	sessions := session.NewManager(keeper)
	sessions.Observe(func(sid string, sess session.Session) {
		logger.Info("session changed", logsvc.Identity{SID: sid, Sess: sess})
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	platform := platformsvc.NewClient(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Dashboard Service

	server := echoapi.NewServer(
		echoapi.Deps{
			Conf:       conf,
			Logger:     logger,
			Sessions:   sessions,
			Platform:   platform,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpKeeper(conf *core.Config) (session.Keeper, func(), error) {
	switch conf.Session.Storage {
	case "postgres":
		store, err := sqlxkv.Open(conf.Session.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "inmem":
		return inmemkv.New(), func() {}, nil
	default:
		store, err := boltkv.Open(conf.Session.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
