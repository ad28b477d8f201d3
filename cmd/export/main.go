package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"newsbag/db"
	"newsbag/internal/export"
	"newsbag/internal/repository"
)

const pageSize = 500

func main() {

	out := flag.String("out", "articles.csv", "output CSV path")
	flag.Parse()

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	repo := repository.NewArticleRepository(db.DB)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("error creating output file: %v", err)
	}
	defer f.Close()

	w := export.NewWriter(f)

	var exported int
	for offset := 0; ; offset += pageSize {
		articles, err := repo.ListArticles(pageSize, offset)
		if err != nil {
			log.Fatalf("error reading articles: %v", err)
		}
		if len(articles) == 0 {
			break
		}

		for _, a := range articles {
			if err := w.WriteArticle(a); err != nil {
				log.Fatalf("error writing record: %v", err)
			}
		}
		exported += len(articles)
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("error flushing CSV: %v", err)
	}

	slog.Info("export complete", "articles", exported, "path", *out)
}
