package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/store"
	"github.com/bookdex/bookdex-server/internal/store/sqlite"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/bookdex/bookdex.db")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	shown := 0
	shownFailed := 0

	params := store.DefaultPaginationParams()
	for {
		page, err := st.ListBooks(ctx, params)
		if err != nil {
			log.Fatalf("Error listing books: %v", err)
		}

		for i := range page.Items {
			summary := &page.Items[i]

			switch {
			case summary.Status == domain.StatusFailed && shownFailed < 3:
				shownFailed++
				fmt.Printf("Book (FAILED at %s): %s\n", summary.FailedStage, summary.Title)
				fmt.Printf("  ID: %s\n", summary.ID)
				fmt.Printf("  Path: %s\n", summary.Path)
				fmt.Printf("  Reason: %s\n", summary.FailureReason)
				fmt.Println()
			case summary.Status == domain.StatusProcessed && shown < 3:
				shown++
				// List rows carry no chapters; fetch the full record.
				book, err := st.GetBook(ctx, summary.ID)
				if err != nil {
					log.Printf("Error reading book %s: %v", summary.ID, err)
					continue
				}
				fmt.Printf("Book: %s\n", book.Title)
				fmt.Printf("  ID: %s\n", book.ID)
				fmt.Printf("  Chapters: %d\n", len(book.Chapters))
				fmt.Printf("  Words: %d\n", book.WordCount)
				fmt.Printf("  Genre: %s (%.2f)\n", book.PrimaryGenre, book.PrimaryScore)
				fmt.Printf("  Level: %s (complexity %.1f)\n", book.ReadingLevel, book.ComplexityScore)
				for j, ch := range book.Chapters {
					if j >= 5 {
						fmt.Printf("    ... and %d more chapters\n", len(book.Chapters)-5)
						break
					}
					fmt.Printf("    [%d] %s (%d words)\n", ch.Index, ch.Title, ch.WordCount)
				}
				fmt.Println()
			}
		}

		if !page.HasMore {
			break
		}
		params.Cursor = page.NextCursor
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		log.Fatalf("Error reading stats: %v", err)
	}

	model, modelErr := st.LatestTopicModel(ctx)

	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", stats.TotalBooks)
	fmt.Printf("Processed: %d\n", stats.ProcessedBooks)
	fmt.Printf("Failed: %d\n", stats.FailedBooks)
	fmt.Printf("Total chapters: %d\n", stats.TotalChapters)
	fmt.Printf("Total words: %d\n", stats.TotalWords)
	if stats.ProcessedBooks > 0 {
		fmt.Printf("Average complexity: %.1f\n", stats.AvgComplexity)
	}
	if modelErr == nil {
		fmt.Printf("Topic model: %s (k=%d, %d docs)\n", model.ID, model.K, model.DocCount)
	} else {
		fmt.Println("Topic model: none")
	}
}
