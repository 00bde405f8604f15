package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"taskdeck/internal/model"
)

// Seed loads the demo fixtures on an empty database: one account, the five
// stock categories and a handful of tasks, so the bot is usable right after
// first start. A database that already has users is left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	users := NewUserRepository(db)
	categories := NewCategoryRepository(db)
	tasks := NewTaskRepository(db)

	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("[info] empty database, seeding demo data")

	demo := model.User{Username: "demo", Email: "demo@taskdeck.local", Name: "Demo User", Password: "demo123"}
	if err := users.Create(ctx, &demo); err != nil {
		return err
	}

	stock := []model.Category{
		{Name: "work", Label: "Work", Color: "#3B82F6"},
		{Name: "personal", Label: "Personal", Color: "#10B981"},
		{Name: "shopping", Label: "Shopping", Color: "#F59E0B"},
		{Name: "health", Label: "Health", Color: "#EF4444"},
		{Name: "learning", Label: "Learning", Color: "#8B5CF6"},
	}
	for i := range stock {
		if err := categories.Create(ctx, &stock[i]); err != nil {
			return err
		}
	}

	now := time.Now()
	fixtures := []model.Task{
		{
			Title: "Review quarterly numbers", Description: "Walk through the Q report before the sync",
			Category: "work", Priority: model.PriorityHigh, Status: model.StatusInProgress,
			DueDate: now.AddDate(0, 0, 1).Format(model.DateOnly),
		},
		{
			Title: "Book dentist appointment", Description: "Ask for a morning slot",
			Category: "health", Priority: model.PriorityMedium, Status: model.StatusPending,
			DueDate: now.AddDate(0, 0, 3).Format(model.DateOnly),
		},
		{
			Title: "Weekly groceries", Description: "",
			Category: "shopping", Priority: model.PriorityLow, Status: model.StatusPending,
			DueDate: now.Format(model.DateOnly),
		},
	}
	for i := range fixtures {
		fixtures[i].UserID = demo.ID
		fixtures[i].CreatedAt = now
		fixtures[i].UpdatedAt = now
		if err := tasks.Create(ctx, &fixtures[i]); err != nil {
			return err
		}
	}
	return nil
}
