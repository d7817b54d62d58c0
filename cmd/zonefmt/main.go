// Command zonefmt parses a zone file the way bindzone does and prints its
// records, or the file as bindzone would rewrite it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jroosing/bindzone/internal/zone"
)

func main() {
	var (
		reverse = flag.Bool("reverse", false, "Treat the file as a reverse zone (default: guess from the file name)")
		rebuild = flag.Bool("rebuild", false, "Print the file as rewritten after a record deletion")
		asJSON  = flag.Bool("json", false, "Print records as JSON")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: zonefmt [-reverse] [-rebuild|-json] path/to/zonefile\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read zone: %v\n", err)
		os.Exit(1)
	}
	text := string(data)

	class := zone.ClassOf(filepath.Base(path))
	if *reverse {
		class = zone.Reverse
	}
	records := zone.Parse(text, class)

	switch {
	case *rebuild:
		fmt.Print(zone.Rebuild(text, class, records))
	case *asJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(toJSON(records)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode records: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("ZONE: %s\n", filepath.Base(path))
		fmt.Printf("CLASS: %s\n", class)
		fmt.Println("RECORDS:")
		for _, r := range records {
			fmt.Printf("  %-10s %s\n", r.ID(), zone.FormatRecord(r))
		}
	}
}

type jsonRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
	TTL   uint32 `json:"ttl"`
}

func toJSON(records []zone.Record) []jsonRecord {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, jsonRecord{ID: r.ID(), Name: r.Name, Type: string(r.Kind), Value: r.Value, TTL: r.TTL})
	}
	return out
}
