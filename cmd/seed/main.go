// Command seed populates the database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 120, "Number of posts to create")
	comments := flag.Int("comments", 2, "Comments per post")
	follows := flag.Int("follows", 3, "Authors each user follows")
	groupsFile := flag.String("groups", "fixtures/groups.yml", "YAML group fixtures (empty for built-in groups)")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt (users cannot log in)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	plan := seed.Plan{
		Users:           *numUsers,
		Posts:           *numPosts,
		CommentsPerPost: *comments,
		FollowsPerUser:  *follows,
	}
	if *groupsFile != "" {
		plan.Groups, err = seed.LoadGroupsFile(*groupsFile)
		if err != nil {
			log.Fatalf("Failed to load group fixtures: %v", err)
		}
	}

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *fast})
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx, plan)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d groups, %d users, %d posts, %d comments, %d follows",
		sum.Groups, sum.Users, sum.Posts, sum.Comments, sum.Follows)
	if !*fast {
		log.Printf("All generated users have the password: %s", seed.DefaultPassword)
	}
}
