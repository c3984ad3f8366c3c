package main

import (
	"flag"
	"log"
	"os"

	"zooguide/internal/catalog"
)

func main() {
	var (
		in  = flag.String("in", "data/animals.csv", "curator CSV export (tag,name,habitat,diet,endangered,summary,fun_facts,image)")
		out = flag.String("out", "animal-data.json", "catalog file to write (.json or .yaml)")
	)
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open %s: %v", *in, err)
	}
	defer f.Close()

	records, err := catalog.ReadCSV(f)
	if err != nil {
		log.Fatalf("import catalog failed: %v", err)
	}
	if err := catalog.Save(*out, records); err != nil {
		log.Fatalf("write catalog failed: %v", err)
	}

	// the server refuses to start on a bad catalog, so check it here too
	c, err := catalog.Load(*out)
	if err != nil {
		log.Fatalf("written catalog does not load: %v", err)
	}
	log.Printf("✅ imported %d animals from %s to %s", c.Len(), *in, *out)
}
