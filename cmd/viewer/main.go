package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"courier/internal"
	"courier/repositories"
)

// viewer dumps a room's persisted messages straight from the database,
// oldest first, without going through the running server.
func main() {
	room := flag.String("room", "", "Room identifier to dump")
	flag.Parse()

	if *room == "" {
		log.Fatal("missing -room flag")
	}

	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Read-only mode; BypassLockGuard allows opening while the server
	// holds the directory lock.
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Sender", "At", "Status", "Body"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	prefix := []byte(fmt.Sprintf("msg:%s:", *room))
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				msg, err := repositories.Decode(v)
				if err != nil {
					// Keep scanning instead of aborting the whole dump
					fmt.Printf("Error decoding key %s: %v\n", string(it.Item().Key()), err)
					return nil
				}
				if string(msg.RoomID) != *room {
					return nil
				}
				table.Append([]string{
					msg.ID.String(),
					msg.SenderID,
					msg.CreatedAt.Format("2006-01-02 15:04:05.000"),
					string(msg.Status),
					msg.Body,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	table.Render()
}
