// Command genstation writes a synthetic station data file for demos and
// fixtures: a sinusoidal annual temperature cycle with a linear warming
// trend, pseudo-random precipitation, and optionally a few malformed
// rows to exercise the loader's skip counting.
//
// Usage:
//
//	go run ./cmd/genstation -out data/station.csv -years 5 -malformed 5
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"time"
)

type options struct {
	years     int
	startYear int
	trend     float64
	malformed int
	seed      int64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "station.csv", "output file path")
	opts := options{}
	flag.IntVar(&opts.years, "years", 5, "number of years of daily readings")
	flag.IntVar(&opts.startYear, "start-year", 2020, "first calendar year")
	flag.Float64Var(&opts.trend, "trend", 0.05, "warming trend in degrees per year")
	flag.IntVar(&opts.malformed, "malformed", 0, "number of malformed rows to scatter in")
	flag.Int64Var(&opts.seed, "seed", 42, "random seed")
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	days, err := writeStation(w, opts)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d days, %d malformed rows\n", *out, days, opts.malformed)
	return nil
}

// writeStation generates the station file and returns the number of
// rows written, malformed ones included.
func writeStation(w io.Writer, o options) (int, error) {
	if o.years < 1 {
		return 0, fmt.Errorf("-years must be at least 1")
	}

	start := time.Date(o.startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(o.years, 0, 0)
	totalDays := int(end.Sub(start).Hours() / 24)

	if o.malformed < 0 || o.malformed > totalDays {
		return 0, fmt.Errorf("-malformed must be between 0 and %d for %d years", totalDays, o.years)
	}

	rng := rand.New(rand.NewSource(o.seed))
	badRows := map[int]bool{}
	for len(badRows) < o.malformed {
		badRows[rng.Intn(totalDays)] = true
	}

	fmt.Fprintln(w, "date,T,RH,PRCP")
	day := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if badRows[day] {
			fmt.Fprintln(w, badRow(rng, d))
			day++
			continue
		}

		yearFrac := d.Sub(start).Hours() / (24 * 365.25)
		seasonal := 15 - 10*math.Cos(2*math.Pi*yearFrac)
		temp := seasonal + o.trend*yearFrac + rng.NormFloat64()*2

		humidity := 60 + 20*math.Cos(2*math.Pi*yearFrac) + rng.NormFloat64()*8
		humidity = math.Max(5, math.Min(100, humidity))

		var prcp float64
		if rng.Float64() < 0.3 {
			prcp = rng.ExpFloat64() * 5
		}

		fmt.Fprintf(w, "%s,%.1f,%.0f,%.1f\n", d.Format("2006-01-02"), temp, humidity, prcp)
		day++
	}
	return totalDays, nil
}

// badRow picks one of the malformed shapes the loader is expected to
// skip: unparseable dates, sentinel values, and short rows.
func badRow(rng *rand.Rand, d time.Time) string {
	switch rng.Intn(4) {
	case 0:
		return "not-a-date,12.0,60,0.0"
	case 1:
		return d.Format("2006-01-02") + ",NA,NA,NA"
	case 2:
		return d.Format("2006-01-02") + ",-9999,-9999,-9999"
	default:
		return "garbage line"
	}
}
