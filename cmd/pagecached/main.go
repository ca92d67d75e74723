// Command pagecached wires a disk-backed page cache together from a
// config file and exercises it with a minimal allocate/write/fetch
// cycle, the way cmd/arraydb did for the array-backed storage engine
// this was ported from.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arr-cache/pagecache/internal/bufferpool"
	"github.com/arr-cache/pagecache/internal/common"
	"github.com/arr-cache/pagecache/internal/config"
	"github.com/arr-cache/pagecache/internal/disk"
	"github.com/arr-cache/pagecache/internal/diskscheduler"
	"github.com/arr-cache/pagecache/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	dbPath := flag.String("db", "pagecache.db", "path to the backing data file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pagecached: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := logging.Configure(cfg.LogLevel, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pagecached: %v\n", err)
		os.Exit(1)
	}

	dm, err := disk.NewFileDiskManager(*dbPath, cfg.PoolSize)
	if err != nil {
		logging.Log.Fatalf("open backing file: %v", err)
	}
	defer dm.Close()

	sched := diskscheduler.New(dm, cfg.NumWorkers, cfg.DiskQueueCapacity)
	defer sched.Close()

	pool := bufferpool.New(cfg.PoolSize, cfg.ReplacerK, sched)

	pageID, page, ok := pool.NewPage()
	if !ok {
		logging.Log.Fatal("pool exhausted allocating the first page")
	}
	copy(page.Data[:], []byte("pagecached: hello"))
	pool.UnpinPage(pageID, true, common.AccessUnknown)
	logging.Log.Infof("allocated page %d", pageID)

	if _, ok := pool.FetchPage(pageID, common.AccessLookup); !ok {
		logging.Log.Fatalf("fetch page %d: not found", pageID)
	}
	pool.UnpinPage(pageID, false, common.AccessLookup)

	pool.FlushAllPages()
	logging.Log.Infof("pagecached: pool size %d, backing file %s ready", pool.Size(), *dbPath)
}
