package seed

import (
	"context"
	"fmt"

	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Plan sizes a seeding run.
type Plan struct {
	Users           int
	Posts           int
	CommentsPerPost int
	FollowsPerUser  int
	Groups          []GroupFixture
}

// Summary counts what a run created.
type Summary struct {
	Groups   int
	Users    int
	Posts    int
	Comments int
	Follows  int
}

// Seeder populates a database according to a Plan.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes every row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range []interface{}{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run creates groups, users, posts spread over users and groups, comments
// and follow edges.
func (s *Seeder) Run(ctx context.Context, plan Plan) (Summary, error) {
	var sum Summary

	fixtures := plan.Groups
	if fixtures == nil {
		fixtures = DefaultGroups
	}
	groups, err := Groups(ctx, s.db, fixtures)
	if err != nil {
		return sum, err
	}
	sum.Groups = len(groups)

	users := make([]*models.User, 0, plan.Users)
	for i := 0; i < plan.Users; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for i := 0; i < plan.Posts; i++ {
		author := users[i%len(users)]
		var group *models.Group
		// Roughly a third of posts stay ungrouped.
		if n := gofakeit.Number(0, len(groups)+len(groups)/2); n < len(groups) {
			group = &groups[n]
		}
		post, err := s.factory.CreatePost(ctx, author, group)
		if err != nil {
			return sum, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		for j := 0; j < plan.CommentsPerPost; j++ {
			commenter := users[gofakeit.Number(0, len(users)-1)]
			if _, err := s.factory.CreateComment(ctx, commenter, post); err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
	}

	for i, u := range users {
		for j := 1; j <= plan.FollowsPerUser && j < len(users); j++ {
			author := users[(i+j)%len(users)]
			if err := s.factory.Follow(ctx, u, author); err != nil {
				return sum, fmt.Errorf("create follow: %w", err)
			}
			sum.Follows++
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		"groups", sum.Groups, "users", sum.Users, "posts", sum.Posts,
		"comments", sum.Comments, "follows", sum.Follows)
	return sum, nil
}
