// Package main provides a tool to seed the database with test book data.
//
// This writes synthetic processed books so the stats, search and export
// endpoints have something to serve during development.
//
// Usage:
//
//	DB_PATH=~/bookdex/bookdex.db go run ./cmd/seed
//	DB_PATH=~/bookdex/bookdex.db go run ./cmd/seed --count 50
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/bookdex/bookdex-server/internal/domain"
	"github.com/bookdex/bookdex-server/internal/id"
	"github.com/bookdex/bookdex-server/internal/store"
	"github.com/bookdex/bookdex-server/internal/store/sqlite"
)

var count = flag.Int("count", 20, "Number of synthetic books to create")

var genres = []string{
	"Science Fiction", "Fantasy", "Mystery", "Romance", "Thriller",
	"Historical Fiction", "Biography", "Science", "Self-Help", "Horror",
}

var levels = []domain.ReadingLevel{
	domain.LevelElementary,
	domain.LevelMiddleSchool,
	domain.LevelHighSchool,
	domain.LevelCollege,
	domain.LevelGraduate,
}

var titleWords = []string{
	"Shadow", "Garden", "Winter", "Machine", "Empire", "River", "Silent",
	"Glass", "Iron", "Forgotten", "Last", "Crimson", "Hollow", "Distant",
}

var fillerWords = []string{
	"the", "quiet", "morning", "settled", "over", "distant", "hills",
	"while", "travelers", "crossed", "old", "stone", "bridges", "toward",
	"market", "towns", "carrying", "letters", "maps", "memories",
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/bookdex/bookdex.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	started := time.Now().UTC()

	created := 0
	for i := 0; i < *count; i++ {
		book, result := syntheticBook(rng, i)
		if err := st.CommitBook(ctx, book, result); err != nil {
			log.Printf("Failed to commit %s: %v", book.Title, err)
			continue
		}
		created++
		fmt.Printf("  seeded %s (%s, %s)\n", book.Title, book.PrimaryGenre, book.ReadingLevel)
	}

	finished := time.Now().UTC()
	run := &store.RunRecord{
		ID:          id.MustGenerate("run"),
		LibraryPath: "seed://synthetic",
		StartedAt:   started,
		FinishedAt:  finished,
		Total:       *count,
		Succeeded:   created,
		Failed:      *count - created,
	}
	if run.Total > 0 {
		run.SuccessRate = float64(run.Succeeded) / float64(run.Total)
	}
	if err := st.RecordRun(ctx, run); err != nil {
		log.Printf("Failed to record seed run: %v", err)
	}

	fmt.Printf("\nSeeded %d of %d books\n", created, *count)
}

func syntheticBook(rng *rand.Rand, n int) (*domain.Book, *domain.AnalysisResult) {
	now := time.Now().UTC()
	title := fmt.Sprintf("The %s %s",
		titleWords[rng.Intn(len(titleWords))],
		titleWords[rng.Intn(len(titleWords))])

	chapterCount := 3 + rng.Intn(4)
	chapters := make([]domain.Chapter, 0, chapterCount)
	totalWords := 0
	for c := 0; c < chapterCount; c++ {
		text := fillerText(rng, 120+rng.Intn(200))
		words := len(strings.Fields(text))
		totalWords += words
		chapters = append(chapters, domain.Chapter{
			Index:     c,
			ChapterID: fmt.Sprintf("ch%03d", c+1),
			Title:     fmt.Sprintf("Chapter %d", c+1),
			Text:      text,
			WordCount: words,
		})
	}

	genre := genres[rng.Intn(len(genres))]
	level := levels[rng.Intn(len(levels))]
	score := 20 + rng.Float64()*70

	sum := sha256.Sum256([]byte(fmt.Sprintf("seed:%s:%d", title, n)))

	book := &domain.Book{
		ID:               id.MustGenerate("bk"),
		Fingerprint:      hex.EncodeToString(sum[:]),
		CreatedAt:        now,
		UpdatedAt:        now,
		ExtractedAt:      now,
		Title:            title,
		Authors:          []string{"Seed Author"},
		Language:         "en",
		DetectedLanguage: "en",
		Path:             fmt.Sprintf("/library/seed/%03d.epub", n),
		FileSize:         int64(totalWords * 6),
		WordCount:        totalWords,
		ComplexityScore:  score,
		ReadingLevel:     level,
		PrimaryGenre:     genre,
		PrimaryScore:     0.5 + rng.Float64()*0.5,
		Status:           domain.StatusProcessed,
		Chapters:         chapters,
	}

	result := &domain.AnalysisResult{
		ID:        id.MustGenerate("ar"),
		BookID:    book.ID,
		CreatedAt: now,
		Source:    domain.SourceFused,
		GenreScores: []domain.GenreScore{
			{Genre: genre, Confidence: book.PrimaryScore},
		},
		Complexity: domain.ComplexityMetrics{
			WordCount:       totalWords,
			ComplexityScore: score,
			ReadingLevel:    level,
			Language:        "en",
		},
		Unmodeled: true,
	}

	return book, result
}

func fillerText(rng *rand.Rand, words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(fillerWords[rng.Intn(len(fillerWords))])
	}
	b.WriteByte('.')
	return b.String()
}
