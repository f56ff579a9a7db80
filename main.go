package main

import (
	"Foodgram-Backend/cmd/config"
	migration "Foodgram-Backend/cmd/database/migrate"
	"Foodgram-Backend/cmd/database/seed"
	"Foodgram-Backend/internal/utils"
	"flag"
	"log"
)

func main() {
	ingredientsCSV := flag.String("load-ingredients", "", "path to an ingredients CSV to import before starting")
	tagsCSV := flag.String("load-tags", "", "path to a tags CSV to import before starting")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("error migrating database: %v", err)
	}

	if *ingredientsCSV != "" {
		if err := seed.LoadIngredients(db, *ingredientsCSV); err != nil {
			log.Fatalf("error loading ingredients: %v", err)
		}
	}
	if *tagsCSV != "" {
		if err := seed.LoadTags(db, *tagsCSV); err != nil {
			log.Fatalf("error loading tags: %v", err)
		}
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("error creating app: %v", err)
	}

	if err := app.Listen(":8080"); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
