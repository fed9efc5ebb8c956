// Command rehash recomputes the content-hash ids of a normalized catalog
// document. Old exports carry djb2-based ids; this tool reports how many
// entries still use them and optionally rewrites the document with
// canonical ids.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmendez/supercerca/internal/identity"
	"github.com/dmendez/supercerca/internal/osm"
)

func main() {
	in := flag.String("in", "./data/stores.json", "normalized catalog document to inspect")
	out := flag.String("out", "", "when set, write the document with canonical ids to this path")
	flag.Parse()

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read %s: %v", *in, err)
	}

	var stores []osm.Store
	if err := json.Unmarshal(data, &stores); err != nil {
		log.Fatalf("parse %s: %v", *in, err)
	}

	var canonical, legacy, unknown int
	for i, s := range stores {
		want := identity.StoreID(s.Name, s.Address, deref(s.City), deref(s.Zipcode))
		old := identity.LegacyStoreID(s.Name, s.Address, deref(s.City), deref(s.Zipcode))

		switch s.ID {
		case want:
			canonical++
		case old:
			legacy++
		default:
			unknown++
		}
		stores[i].ID = want
	}

	fmt.Printf("%d entries: %d canonical, %d legacy, %d unknown\n",
		len(stores), canonical, legacy, unknown)

	if *out == "" {
		return
	}

	rewritten, err := json.MarshalIndent(stores, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(*out, rewritten, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("wrote %s\n", *out)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
