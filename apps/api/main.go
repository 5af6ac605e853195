package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/trezcool/klabu/apps/api/echoapi"
	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/event"
	"github.com/trezcool/klabu/core/schedule"
	"github.com/trezcool/klabu/core/standings"
	"github.com/trezcool/klabu/core/user"
	emailsvc "github.com/trezcool/klabu/services/email"
	logsvc "github.com/trezcool/klabu/services/logger"
	platformsvc "github.com/trezcool/klabu/services/platform"
	"github.com/trezcool/klabu/storage/database"
	dummydb "github.com/trezcool/klabu/storage/database/dummy"
	sqlxrepos "github.com/trezcool/klabu/storage/database/sqlxrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up repositories
	usrRepo, evtRepo, closeDB, err := setUpRepos(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer closeDB()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(usrRepo, mailSvc, conf)

	fetchers := platformsvc.Fetchers()
	if conf.Debug {
		fetchers = platformsvc.DummyFetchers()
	}

	// =========================================================================
	// Set up Schedulers
	//
	// Two independent single-timer schedulers: one fires reminders before
	// meetings/contests start, the other collects contest results after they
	// end. They share no state and may fire concurrently.

	reminders := schedule.NewDriver(
		"reminders",
		event.NewReminders(evtRepo, usrSvc, mailSvc, conf, logger),
		logger,
	)
	results := schedule.NewDriver(
		"results",
		standings.NewCollector(evtRepo, usrSvc, fetchers, mailSvc, conf, logger),
		logger,
	)

	evtSvc := event.NewService(evtRepo, conf, logger, reminders, results)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(conf, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = reminders.Bootstrap(ctx, event.NewReminderSource(evtRepo, conf, logger)); err != nil {
		logger.Fatal(fmt.Sprintf("bootstrapping reminders: %v", err), err)
	}
	if err = results.Bootstrap(ctx, event.NewResultSource(evtRepo, conf, logger)); err != nil {
		logger.Fatal(fmt.Sprintf("bootstrapping results: %v", err), err)
	}
	reminders.Start(ctx)
	defer reminders.Stop()
	results.Start(ctx)
	defer results.Stop()

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
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logger,
		UserSvc:   usrSvc,
		EventSvc:  evtSvc,
		Reminders: reminders,
		Results:   results,
	})
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepos wires the storage layer: Postgres-backed repositories, or the
// in-memory ones in DEV mode when no database is configured.
func setUpRepos(conf *core.Config) (user.Repository, event.Repository, func(), error) {
	if conf.Debug && conf.Database.User == "" {
		db, err := dummydb.Open()
		if err != nil {
			return nil, nil, nil, err
		}
		return dummydb.NewUserRepository(db), dummydb.NewEventRepository(db), func() {}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	return sqlxrepos.NewUserRepository(db), sqlxrepos.NewEventRepository(db), closeDB, nil
}
