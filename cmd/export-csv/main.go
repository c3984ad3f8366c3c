package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"zooguide/internal/predictlog"
	"zooguide/pkg/database"
	"zooguide/pkg/models"
	"zooguide/pkg/utils"
)

var header = []string{
	"partition_key", "row_key", "timestamp", "anonymous_id", "outcome",
	"prediction_count", "top_tag", "top_probability", "animal_name",
	"predictions", "error_kind", "error_message",
}

func main() {
	var (
		date = flag.String("date", "", "partition to export (YYYY-MM-DD, default today in RANKING_TIMEZONE)")
		out  = flag.String("out", "", "output CSV path (default data/predictions-<date>.csv)")
	)
	flag.Parse()

	cfg, err := utils.LoadToolConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	partition := *date
	if partition == "" {
		partition = time.Now().In(cfg.Location()).Format(predictlog.PartitionLayout)
	}
	if _, err := time.Parse(predictlog.PartitionLayout, partition); err != nil {
		log.Fatalf("invalid -date %q: %v", partition, err)
	}
	outPath := *out
	if outPath == "" {
		outPath = filepath.Join("data", "predictions-"+partition+".csv")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db, cfg.LogTableName); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	events, err := predictlog.NewRepo(db, cfg.LogTableName).ListPartition(ctx, partition)
	if err != nil {
		log.Fatalf("list partition failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %v", outPath, err)
	}
	defer f.Close()

	if err := writeEvents(f, events); err != nil {
		log.Fatalf("export failed: %v", err)
	}
	log.Printf("✅ exported %d events from %s to %s", len(events), partition, outPath)
}

func writeEvents(dst io.Writer, events []models.PredictionEvent) error {
	w := csv.NewWriter(dst)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, ev := range events {
		row := []string{
			ev.Partition,
			ev.ID,
			ev.Timestamp.UTC().Format(time.RFC3339Nano),
			ev.AnonymousID,
			models.OutcomeName(ev.Outcome),
		}
		switch o := ev.Outcome.(type) {
		case models.PredictionSuccess:
			row = append(row,
				strconv.Itoa(o.PredictionCount),
				o.TopTag,
				strconv.FormatFloat(o.TopConfidence, 'f', 4, 64),
				o.AnimalName,
				o.Summary,
				"", "",
			)
		case models.PredictionFailure:
			row = append(row,
				strconv.Itoa(o.PredictionCount),
				"", "", "",
				o.Summary,
				o.ErrorKind,
				o.ErrorMessage,
			)
		default:
			continue
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
