package main

import (
	"context"
	"flag"
	"fmt"
	golog "log"
	"os"
	"os/signal"
	"time"

	"github.com/google/gops/agent"
	"github.com/nicolagi/touchicon/server"
	log "github.com/sirupsen/logrus"
)

func main() {
	defaultConfigFile := os.ExpandEnv("$HOME/lib/touchicon/touchicon.config")
	configFile := flag.String("config", defaultConfigFile, "location of configuration file")
	flag.Parse()

	config, err := loadConfig(*configFile)
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"path": *configFile,
		}).Fatal("Could not load configuration")
	}

	config.applyDefaultsForMissingProperties()

	if config.Debug {
		log.SetLevel(log.DebugLevel)
	}

	cleanup := redirectLogging(config)
	defer cleanup()

	if err := agent.Listen(agent.Options{
		ShutdownCleanup: true,
	}); err != nil {
		log.WithField("err", err).Warn("Could not start gops agent")
	} else {
		defer agent.Close()
	}

	res := newResources()
	defer res.close()

	src, err := res.source(config)
	if err != nil {
		log.WithField("err", err).Fatal("Could not set up source image")
	}
	responses, err := res.cache(config.Cache)
	if err != nil {
		log.WithField("err", err).Fatal("Could not set up response cache")
	}
	log.WithFields(log.Fields{
		"source": config.Source.Type,
		"cache":  config.Cache.Type,
	}).Info("Configured")

	srv := server.New(
		server.WithAddress(config.Listen),
		server.WithSource(src),
		server.WithCache(responses),
	)
	addr, err := srv.Listen()
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"addr": addr}).Info("Listening")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		sig := <-c
		log.WithField("signal", sig).Info("Shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Makes srv.Serve() return, so deferred clean-up functions run.
		if err := srv.Shutdown(ctx); err != nil {
			log.WithFields(log.Fields{"err": err}).Warn("Could not shut down the server cleanly")
		}
	}()

	if err := srv.Serve(); err != nil {
		log.Error(err)
	}
}

func redirectLogging(c *config) (cleanup func()) {
	golog.SetOutput(log.StandardLogger().Writer())
	if c.LogPath == "" {
		return func() {}
	}
	pathname := os.ExpandEnv(c.LogPath)
	logger := log.WithField("pathname", pathname)
	f, err := os.OpenFile(pathname, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		logger.WithField("err", err).Fatal("Could not open log file")
	}
	logger.Info("Lines after this one will logged to a file")
	log.SetOutput(f)
	return func() {
		if err := f.Close(); err != nil {
			// Can't use the logger here!
			_, _ = fmt.Fprintf(os.Stderr, "Could not close log file cleanly %q: %v", pathname, err)
		}
	}
}
