package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"github.com/google/gops/agent"
	"github.com/nicolagi/touchicon/storage"
	log "github.com/sirupsen/logrus"
)

func main() {
	defaultConfigFile := os.ExpandEnv("$HOME/lib/touchicon/blobserver.config")
	configFile := flag.String("config", defaultConfigFile, "location of configuration file")
	flag.Parse()

	opts, err := loadConfig(*configFile)
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"path": *configFile,
		}).Fatal("Could not load configuration")
	}
	opts.applyDefaultsForMissingProperties()

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if err := agent.Listen(agent.Options{
		ShutdownCleanup: true,
	}); err != nil {
		log.WithField("err", err).Warn("Could not start gops agent")
	} else {
		defer agent.Close()
	}

	path := os.ExpandEnv(opts.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		log.Fatalf("Could not ensure directory %q exists: %v", filepath.Dir(path), err)
	}
	var store storage.Store
	switch opts.Type {
	case "bolt":
		db, err := bolt.Open(path, 0600, nil)
		if err != nil {
			log.Fatalf("Could not open database %q: %v", path, err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Warnf("Could not close boltdb database: %v", err)
			}
		}()
		store, err = storage.NewBoltStore(db, "blobs")
		if err != nil {
			log.Fatalf("Could not instantiate boltdb store at %q: %v", path, err)
		}
		log.Infof("Will use a bolt database at %s", path)
	case "disk":
		store = storage.NewDiskStore(path)
		log.Infof("Will use a disk-based backend storing data at %s", path)
	default:
		log.Fatalf("Unknown store type %q", opts.Type)
	}

	if err := http.ListenAndServe(opts.BlobServer, storage.Handler(store)); err != nil {
		log.WithField("err", err).Fatal("Could not listen and serve")
	}
}
