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
	runSeed := flag.Bool("seed", false, "seed the ingredient catalog and default tags")
	ingredientsCSV := flag.String("ingredients", "data/ingredients.csv", "path to the ingredients CSV file")
	addr := flag.String("addr", ":8000", "listen address")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if *runSeed {
		if err := seed.Seed(db, *ingredientsCSV); err != nil {
			log.Fatalf("failed to seed database: %v", err)
		}
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	if err := app.Listen(*addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
