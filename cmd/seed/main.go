// Command seed populates a fresh database with an admin account and the
// starter category catalog. Running it against an already-seeded database
// is a no-op.
package main

import (
	"log"

	"quizhub/internal/config"
	"quizhub/internal/database"
	"quizhub/internal/repository"
	"quizhub/internal/security"
)

type subcategorySeed struct {
	name        string
	description string
}

type categorySeed struct {
	name          string
	description   string
	icon          string
	subcategories []subcategorySeed
}

var catalog = []categorySeed{
	{
		name:        "Academic",
		description: "Test your knowledge in academic subjects like Physics, Chemistry, Mathematics, and more.",
		icon:        "book-open",
		subcategories: []subcategorySeed{
			{"Physics", "Mechanics, thermodynamics, electromagnetism, and modern physics"},
			{"Chemistry", "Organic, inorganic, and physical chemistry concepts"},
			{"Mathematics", "Algebra, calculus, geometry, and statistics"},
			{"Biology", "Cell biology, genetics, ecology, and human anatomy"},
			{"History", "World history, ancient civilizations, and modern events"},
			{"Geography", "Countries, capitals, physical and human geography"},
		},
	},
	{
		name:        "Entertainment",
		description: "Fun quizzes about movies, music, sports, games, and pop culture.",
		icon:        "film",
		subcategories: []subcategorySeed{
			{"Movies", "Classic films, blockbusters, directors, and actors"},
			{"Music", "Artists, albums, genres, and music history"},
			{"Sports", "Football, basketball, cricket, Olympics, and more"},
			{"Video Games", "Gaming history, popular titles, and gaming culture"},
			{"Television", "TV shows, series, actors, and streaming content"},
		},
	},
	{
		name:        "General Knowledge",
		description: "Broaden your horizons with quizzes on various topics and trivia.",
		icon:        "sun",
		subcategories: []subcategorySeed{
			{"Science & Nature", "Scientific discoveries, natural phenomena, and the environment"},
			{"Technology", "Computers, internet, innovations, and tech companies"},
			{"Current Affairs", "Recent news, global events, and trending topics"},
			{"Art & Literature", "Famous artists, literary works, and cultural movements"},
			{"Food & Cuisine", "World cuisines, cooking, and culinary traditions"},
		},
	},
}

func main() {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	contentRepo := repository.NewContentRepository(db)

	// Admin account
	admin, err := userRepo.GetUserByUsername("admin")
	if err != nil {
		log.Fatalf("Failed to look up admin user: %v", err)
	}
	if admin == nil {
		hash, err := security.HashPassword("admin123")
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		admin, err = userRepo.CreateUser("admin", "admin@quizhub.com", hash)
		if err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		if _, err := profileRepo.GetOrCreate(admin.ID); err != nil {
			log.Fatalf("Failed to create admin profile: %v", err)
		}
		if err := profileRepo.SetQuizAdmin(admin.ID, true); err != nil {
			log.Fatalf("Failed to grant quiz admin: %v", err)
		}
		log.Println("Created admin user: admin@quizhub.com / admin123")
	}

	// Category catalog
	count, err := contentRepo.CountCategories()
	if err != nil {
		log.Fatalf("Failed to count categories: %v", err)
	}
	if count > 0 {
		log.Println("Categories already present, skipping catalog seed")
		return
	}

	for _, c := range catalog {
		category, err := contentRepo.CreateCategory(c.name, c.description, c.icon)
		if err != nil {
			log.Fatalf("Failed to create category %s: %v", c.name, err)
		}
		for _, s := range c.subcategories {
			if _, err := contentRepo.CreateSubcategory(s.name, s.description, category.ID); err != nil {
				log.Fatalf("Failed to create subcategory %s: %v", s.name, err)
			}
		}
	}

	log.Println("Created categories and subcategories")
	log.Println("Database seeded successfully")
}
