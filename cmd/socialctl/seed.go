package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/engagement"
	"github.com/tangle-social/backend/internal/models"
	"github.com/tangle-social/backend/internal/notify"
	"github.com/tangle-social/backend/internal/social"
)

func seedCmd() *cobra.Command {
	var userCount, postCount int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with fake users, posts and engagement",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(userCount, postCount)
		},
	}
	cmd.Flags().IntVar(&userCount, "users", 25, "number of users to create")
	cmd.Flags().IntVar(&postCount, "posts", 100, "number of posts to create")
	return cmd
}

// runSeed drives the real services rather than inserting edges by hand,
// so seeded data satisfies the same invariants production writes do.
func runSeed(userCount, postCount int) error {
	ctx := context.Background()
	db := database.DB

	// Inline fan-out keeps seeding deterministic.
	notifier := notify.NewService(db, nil, false)
	socialSvc := social.NewService(db, notifier, nil)
	engagementSvc := engagement.NewService(db, notifier)

	users := make([]models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		name := gofakeit.Name()
		u := models.User{
			Email:       gofakeit.Email(),
			Username:    fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			DisplayName: name,
			Bio:         gofakeit.Sentence(8),
			AvatarURL:   gofakeit.ImageURL(128, 128),
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, u)
	}

	posts := make([]models.Post, 0, postCount)
	for i := 0; i < postCount; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		p := models.Post{
			UserID:  author.ID,
			Content: gofakeit.Sentence(12),
		}
		// Every fifth post carries a poll.
		if i%5 == 0 {
			p.Poll = &models.Poll{
				Question: gofakeit.Question(),
				Options: []models.PollOption{
					{Text: gofakeit.Word()},
					{Text: gofakeit.Word()},
					{Text: gofakeit.Word()},
				},
				EndsAt: time.Now().UTC().Add(72 * time.Hour),
				Active: true,
			}
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, p)
	}

	// Random follows, friendships and engagement through the services.
	for _, u := range users {
		for i := 0; i < 3; i++ {
			target := users[gofakeit.Number(0, len(users)-1)]
			_ = socialSvc.FollowUser(ctx, u.ID, target.ID)
		}

		target := users[gofakeit.Number(0, len(users)-1)]
		if reqID, err := socialSvc.SendFriendRequest(ctx, u.ID, target.ID); err == nil {
			if gofakeit.Bool() {
				_ = socialSvc.AcceptFriendRequest(ctx, reqID, target.ID)
			}
		}

		for i := 0; i < 5; i++ {
			post := posts[gofakeit.Number(0, len(posts)-1)]
			_, _ = engagementSvc.ToggleLike(ctx, u.ID, post.ID, engagement.TargetPost)
			if post.Poll != nil {
				_, _ = engagementSvc.VotePoll(ctx, u.ID, post.ID, gofakeit.Number(0, 2))
			}
		}
	}

	fmt.Printf("seeded %d users, %d posts\n", len(users), len(posts))
	return nil
}
