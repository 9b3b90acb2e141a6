package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"btreestore/btree"
	"btreestore/cli"
	"btreestore/report"
	"btreestore/seed"
	"btreestore/store"

	"github.com/fatih/color"
)

var (
	dbPath                     *string
	order                      *int
	shouldReset, shouldSeed    *bool
	seedNumRecords             *int
	seedMode                   *string
	compress, lenient, noColor *bool
	reportPath                 *string
)

func main() {
	log.SetPrefix("btreestore: ")
	setupFlags()

	if *noColor {
		color.NoColor = true
	}

	if *reportPath != "" {
		if err := writeReport(*reportPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	tree, err := btree.NewBTree(*order)
	if err != nil {
		log.Fatal(err)
	}

	mode, err := seed.ParseMode(*seedMode)
	if err != nil {
		log.Fatal(err)
	}

	opts := []store.Option{store.WithLenient(*lenient)}
	if *compress {
		opts = append(opts, store.WithCompression(true))
	}
	st := store.Open(*dbPath, opts...)

	if *shouldReset {
		if err := st.Reset(); err != nil {
			log.Fatal(err)
		}
	}

	if _, err := st.Load(tree); err != nil {
		log.Fatal(err)
	}

	generator := seed.New(mode, rand.NewSource(time.Now().UnixNano()))
	if *shouldSeed {
		n := generator.Fill(tree, *seedNumRecords)
		log.Printf("seeded %d new records (%s mode)", n, mode)
	}

	scanner := bufio.NewScanner(os.Stdin)
	demo := cli.NewCli(scanner, os.Stdout, tree, st, generator)
	demo.Start()

	if err := st.Save(tree); err != nil {
		log.Fatal(err)
	}
}

func writeReport(path string) error {
	src := rand.NewSource(time.Now().UnixNano())
	var series []report.Series
	for _, t := range []int{2, 5, btree.DefaultOrder} {
		s, err := report.Measure(t, report.DefaultSizes, 1000, src)
		if err != nil {
			return err
		}
		series = append(series, s)
		for _, p := range s.Points {
			log.Printf("t=%d records=%d height=%d avg comparisons=%.2f", t, p.Records, p.Height, p.AvgComparisons)
		}
	}
	if err := report.Plot(path, series...); err != nil {
		return err
	}
	log.Printf("lookup cost chart written to %s", path)
	return nil
}

func setupFlags() {
	dbPath = flag.String("db", "database.txt", "Snapshot file loaded at startup and saved on exit. A \".sz\" suffix selects snappy compression.")
	order = flag.Int("order", btree.DefaultOrder, "Minimum degree t of the B-tree (nodes hold t-1 to 2t-1 keys).")
	shouldReset = flag.Bool("reset", false, "Erase the snapshot file before startup.")
	shouldSeed = flag.Bool("seed", false, "Insert random records upon startup.")
	seedNumRecords = flag.Int("records", seed.DefaultRecords, "Number of random records to generate with -seed.")
	seedMode = flag.String("seed-mode", seed.ModeData.String(), "Payload style for random records: data, letters or words.")
	compress = flag.Bool("compress", false, "Force snappy compression of the snapshot file.")
	lenient = flag.Bool("lenient", false, "Skip malformed records in the snapshot instead of refusing to start.")
	noColor = flag.Bool("no-color", false, "Disable coloured output.")
	reportPath = flag.String("report", "", "Write a lookup cost chart to this file (png, svg or pdf) and exit.")
	flag.Usage = func() {
		name := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
		fmt.Printf("\n%s - B-Tree key/value CLI\n\nArguments:\n", name)
		flag.PrintDefaults()
	}
	flag.Parse()
}
