// pathtool inspects and edits the persisted path collection offline:
//
//	pathtool list                 print id, type, points and length per record
//	pathtool export <out.json>    dump the collection in the export shape
//	pathtool import <in.json>     merge records from a previous export
//	pathtool clear                delete the whole collection
//
// It talks to the same storage backend the API uses, selected by the usual
// configuration (CAMPUSMAP_STORAGE_BACKEND etc.).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/upt-maps/campusmap/internal/adapters/localdisk"
	"github.com/upt-maps/campusmap/internal/adapters/valkey"
	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/ports"
	"github.com/upt-maps/campusmap/internal/core/usecases"
	"github.com/upt-maps/campusmap/internal/pkg/config"
	"github.com/upt-maps/campusmap/internal/pkg/geospatial"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: pathtool <list|export|import|clear> [file]")
	}

	cfg, err := config.Load("campusmap-pathtool")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var storage ports.KVStorage
	switch cfg.Storage.Backend {
	case "file":
		storage, err = localdisk.New(cfg.Storage.File)
	default:
		storage, err = valkey.New(cfg.Valkey.Addr)
	}
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	ctx := context.Background()
	store := usecases.NewPathStore(ctx, storage)

	switch os.Args[1] {
	case "list":
		for _, rec := range store.List() {
			fmt.Printf("%-26s %-12s %4d points  %8.1f m\n",
				rec.ID, rec.Type, len(rec.Points), geospatial.PathLength(rec.Points))
		}
		fmt.Printf("%d path(s)\n", store.Len())

	case "export":
		if len(os.Args) < 3 {
			log.Fatal("usage: pathtool export <out.json>")
		}
		data, err := store.ExportAll()
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		if err := os.WriteFile(os.Args[2], data, 0o644); err != nil {
			log.Fatalf("write %s: %v", os.Args[2], err)
		}
		fmt.Printf("OK  wrote %d path(s) to %s\n", store.Len(), os.Args[2])

	case "import":
		if len(os.Args) < 3 {
			log.Fatal("usage: pathtool import <in.json>")
		}
		data, err := os.ReadFile(os.Args[2])
		if err != nil {
			log.Fatalf("read %s: %v", os.Args[2], err)
		}
		var records []domain.PathRecord
		if err := json.Unmarshal(data, &records); err != nil {
			log.Fatalf("parse %s: %v", os.Args[2], err)
		}
		imported := 0
		for _, rec := range records {
			if _, err := store.Add(ctx, rec); err != nil {
				log.Printf("skip %s: %v", rec.ID, err)
				continue
			}
			imported++
		}
		fmt.Printf("OK  imported %d of %d path(s)\n", imported, len(records))

	case "clear":
		store.ClearAll(ctx)
		fmt.Println("OK  collection cleared")

	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
